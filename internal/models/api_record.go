package models

// ApiRecord is a stored API endpoint. Key is a secret kept in plain text.
type ApiRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Key         string `json:"key"`
	Description string `json:"description"`
}

// ApiRecordPatch is the save payload for an ApiRecord. Nil fields are left
// untouched when merged over an existing record.
type ApiRecordPatch struct {
	ID          *int64  `json:"id,omitempty"`
	Name        *string `json:"name,omitempty"`
	URL         *string `json:"url,omitempty"`
	Key         *string `json:"key,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Apply returns base with every present patch field written over it.
func (p ApiRecordPatch) Apply(base ApiRecord) ApiRecord {
	if p.Name != nil {
		base.Name = *p.Name
	}
	if p.URL != nil {
		base.URL = *p.URL
	}
	if p.Key != nil {
		base.Key = *p.Key
	}
	if p.Description != nil {
		base.Description = *p.Description
	}
	return base
}
