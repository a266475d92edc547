package leetcode

import "errors"

// upstream failure kinds; callers match them with errors.Is
var (
	ErrTimeout      = errors.New("upstream request timed out")
	ErrUpstream     = errors.New("upstream request failed")
	ErrUserNotFound = errors.New("user not found")
)
