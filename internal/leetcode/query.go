package leetcode

// userProgressQuery asks for global question counts and the user's accepted
// and total submission counts, each keyed by difficulty.
const userProgressQuery = `
query userSessionProgress($username: String!) {
  allQuestionsCount { difficulty count }
  matchedUser(username: $username) {
    submitStats {
      acSubmissionNum { difficulty count submissions }
      totalSubmissionNum { difficulty count submissions }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newUserProgressRequest(username string) graphQLRequest {
	return graphQLRequest{
		Query:     userProgressQuery,
		Variables: map[string]any{"username": username},
	}
}
