package models

// Credential is a stored site login. CreatedAt is stamped once at creation.
type Credential struct {
	ID        int64  `json:"id"`
	SiteName  string `json:"site_name"`
	URL       string `json:"url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	CreatedAt string `json:"created_at"`
}

// CredentialPatch is the save payload for a Credential. There is no CreatedAt
// field: it cannot be changed after creation.
type CredentialPatch struct {
	ID       *int64  `json:"id,omitempty"`
	SiteName *string `json:"site_name,omitempty"`
	URL      *string `json:"url,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (p CredentialPatch) Apply(base Credential) Credential {
	if p.SiteName != nil {
		base.SiteName = *p.SiteName
	}
	if p.URL != nil {
		base.URL = *p.URL
	}
	if p.Username != nil {
		base.Username = *p.Username
	}
	if p.Password != nil {
		base.Password = *p.Password
	}
	return base
}
