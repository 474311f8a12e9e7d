package employee

import (
	"regexp"
	"strings"
	"time"
)

const (
	employeeIDMinLen = 3
	employeeIDMaxLen = 10
	dateLayout       = "2006-01-02"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validEmployeeID(id string) bool {
	if len(id) < employeeIDMinLen || len(id) > employeeIDMaxLen {
		return false
	}
	for _, r := range id {
		isDigit := r >= '0' && r <= '9'
		isUpper := r >= 'A' && r <= 'Z'
		isLower := r >= 'a' && r <= 'z'
		if !isDigit && !isUpper && !isLower {
			return false
		}
	}
	return true
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validSalary(salary float64) bool {
	return salary > 0
}

func validDate(value string) bool {
	_, err := time.Parse(dateLayout, value)
	return err == nil
}

func validSkills(skills []string) bool {
	for _, s := range skills {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}
