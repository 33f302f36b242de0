package model

// AuthStatus is returned by the authentication endpoint
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

type StarredRepository struct {
	Name string `json:"name"`
}

// StarredList is returned by the starred list endpoint
// Authed is false whenever the list could not be loaded
type StarredList struct {
	Authed bool                `json:"authed"`
	Repos  []StarredRepository `json:"repos"`
}

// Names returns the repository names, entries without name are skipped
func (l StarredList) Names() []string {
	names := make([]string, 0, len(l.Repos))
	for _, r := range l.Repos {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}

	return names
}
