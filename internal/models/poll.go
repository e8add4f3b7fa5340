package models

import "time"

// PollOption is a selectable choice inside a field.
type PollOption struct {
	ID     string `json:"id"`
	Option string `json:"option"`
	Image  string `json:"image,omitempty"`
}

// PollField is one question of a poll with its options.
type PollField struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Options []PollOption `json:"options"`
}

// Selection pairs a field with the option the voter picked for it.
type Selection struct {
	FieldID  string `json:"fieldId"`
	OptionID string `json:"optionId"`
}

// Vote is one user's complete set of selections for one poll. Records are
// append-only; they are never mutated or deleted.
type Vote struct {
	UserID string      `json:"userId"`
	Vote   []Selection `json:"vote"`
	CastAt time.Time   `json:"castAt"`
}

// Poll is a self-contained poll document. The active flag is always derived
// from the start/expiration window, never set by a client.
type Poll struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Fields         []PollField `json:"fields"`
	Active         bool        `json:"active"`
	IsInviteOnly   bool        `json:"isInviteOnly"`
	StartDate      time.Time   `json:"startDate"`
	ExpirationDate time.Time   `json:"expirationDate"`
	CreatedBy      string      `json:"createdBy"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// FieldByID returns the field with the given id, if any.
func (p *Poll) FieldByID(fieldID string) *PollField {
	for i := range p.Fields {
		if p.Fields[i].ID == fieldID {
			return &p.Fields[i]
		}
	}
	return nil
}

// ResultRow is one aggregated tally: how many voters picked an option within
// a field. Pairs with zero votes produce no row.
type ResultRow struct {
	Field  string `json:"field"`
	Option string `json:"option"`
	Count  int64  `json:"count"`
}
