package items

import (
	"errors"
	"strings"
)

// ValidateAddItemRequest validates the add-item request
func ValidateAddItemRequest(req *AddItemRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title must not be empty")
	}
	if len(req.Title) > 200 {
		return errors.New("title must be at most 200 characters")
	}
	return nil
}
