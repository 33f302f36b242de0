package controller

import "fmt"

var (
	errInvalidRequest     = fmt.Errorf("INVALID_REQUEST")
	errRepositoryNotFound = fmt.Errorf("REPOSITORY_NOT_FOUND")
)
