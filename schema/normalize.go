package schema

import "unicode"

// ValidateWorkspaceID ensures a workspace id matches [A-Za-z0-9._-].
func ValidateWorkspaceID(id WorkspaceID) error {
	if !validIdent(string(id)) {
		return ErrInvalidWorkspace
	}
	return nil
}

// ValidateTaskID ensures a task id matches [A-Za-z0-9._-].
func ValidateTaskID(id TaskID) error {
	if !validIdent(string(id)) {
		return ErrInvalidTask
	}
	return nil
}

func validIdent(raw string) bool {
	if raw == "" {
		return false
	}
	for _, r := range raw {
		if r == '.' || r == '_' || r == '-' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
