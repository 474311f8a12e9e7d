package employeeerrors

import (
	"net/http"

	"employee-api/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeIDAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with this ID already exists",
		http.StatusConflict,
	)
	ErrEmailAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with this email already exists",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Employee ID must be alphanumeric and 3-10 characters long",
		http.StatusBadRequest,
	)
	ErrInvalidEmail = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid email format",
		http.StatusBadRequest,
	)
	ErrInvalidSalary = apperror.New(
		apperror.CodeInvalidInput,
		"Salary must be a positive number",
		http.StatusBadRequest,
	)
	ErrInvalidJoiningDate = apperror.New(
		apperror.CodeInvalidInput,
		"Joining date must be in YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidSkills = apperror.New(
		apperror.CodeInvalidInput,
		"Skills must be a list of non-empty strings",
		http.StatusBadRequest,
	)
	ErrMissingSkillTerm = apperror.New(
		apperror.CodeInvalidInput,
		"Skill parameter is required",
		http.StatusBadRequest,
	)
)
