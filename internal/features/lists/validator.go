package lists

import (
	"errors"
	"strings"
)

// ValidateCreateListRequest validates the list creation request
func ValidateCreateListRequest(req *CreateListRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title must not be empty")
	}
	if len(req.Title) > 200 {
		return errors.New("title must be at most 200 characters")
	}
	return nil
}

// ValidateJoinByCodeRequest validates the join-by-code request
func ValidateJoinByCodeRequest(req *JoinByCodeRequest) error {
	if len(NormalizeCode(req.Code)) != codeLength {
		return errors.New("code must be 6 characters")
	}
	return nil
}
