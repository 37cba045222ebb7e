// Package models defines the domain records exchanged with the API gateway:
// user profiles and the client-side collections (consultations, drugs,
// orders, messages, diet plans). All records are immutable snapshots of
// server payloads; the session layer never mutates them.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role discriminates the two profile shapes served by the gateway.
type Role string

const (
	RoleStaff  Role = "staff"
	RoleClient Role = "client"
)

var ErrUnknownRole = errors.New("unknown profile role")

// Identity holds account fields common to both roles.
type Identity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	LastLogin string `json:"last_login"`
}

// FileAttachment references an uploaded file (e.g. a profile photo).
type FileAttachment struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// StaffProfile is the staff-specific profile shape.
type StaffProfile struct {
	Identity
	ID                int             `json:"id"`
	Gender            string          `json:"gender"`
	Age               int             `json:"age"`
	ContactOne        string          `json:"contact_one"`
	Nationality       string          `json:"nationality"`
	Img               json.RawMessage `json:"img,omitempty"`
	Specialization    string          `json:"specialization"`
	YearsOfExperience string          `json:"years_of_experience"`
	Languages         []string        `json:"languages"`
	Bio               string          `json:"bio"`
}

// ClientProfile is the client-specific profile shape.
type ClientProfile struct {
	Identity
	ID               int             `json:"id"`
	Gender           string          `json:"gender"`
	Age              int             `json:"age"`
	ContactOne       string          `json:"contact_one"`
	Nationality      string          `json:"nationality"`
	Img              json.RawMessage `json:"img,omitempty"`
	Address          string          `json:"address"`
	Allergies        []string        `json:"allergies"`
	HealthConditions []string        `json:"health_conditions"`
}

// UserProfile is the tagged union returned by GET /user/data. Exactly one of
// Staff or Client is set, matching Role. The year bounds scope the UI's
// year-based views and always accompany the profile.
type UserProfile struct {
	Role                 Role
	CurrentYearStartDate string
	CurrentYearEndDate   string
	Staff                *StaffProfile
	Client               *ClientProfile
}

// profileEnvelope carries the discriminator and the fields that live next to
// the role-specific shape in the flat gateway payload.
type profileEnvelope struct {
	Role                 Role   `json:"role"`
	CurrentYearStartDate string `json:"current_year_start_date"`
	CurrentYearEndDate   string `json:"current_year_end_date"`
}

// UnmarshalJSON decodes the gateway's flat profile payload, picking the
// concrete shape from the "role" field.
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	var env profileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	out := UserProfile{
		Role:                 env.Role,
		CurrentYearStartDate: env.CurrentYearStartDate,
		CurrentYearEndDate:   env.CurrentYearEndDate,
	}

	switch env.Role {
	case RoleStaff:
		var sp StaffProfile
		if err := json.Unmarshal(data, &sp); err != nil {
			return err
		}
		out.Staff = &sp
	case RoleClient:
		var cp ClientProfile
		if err := json.Unmarshal(data, &cp); err != nil {
			return err
		}
		out.Client = &cp
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, env.Role)
	}

	*p = out
	return nil
}

// MarshalJSON re-flattens the union into the gateway's wire shape. Used by
// test doubles that serve profiles; the client itself only decodes.
func (p UserProfile) MarshalJSON() ([]byte, error) {
	var shape any
	switch p.Role {
	case RoleStaff:
		shape = p.Staff
	case RoleClient:
		shape = p.Client
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}

	raw, err := json.Marshal(shape)
	if err != nil {
		return nil, err
	}

	flat := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}

	env, err := json.Marshal(profileEnvelope{
		Role:                 p.Role,
		CurrentYearStartDate: p.CurrentYearStartDate,
		CurrentYearEndDate:   p.CurrentYearEndDate,
	})
	if err != nil {
		return nil, err
	}
	var envFields map[string]json.RawMessage
	if err := json.Unmarshal(env, &envFields); err != nil {
		return nil, err
	}
	for k, v := range envFields {
		flat[k] = v
	}

	return json.Marshal(flat)
}

// Name returns the profile's display name regardless of shape.
func (p *UserProfile) Name() string {
	switch p.Role {
	case RoleStaff:
		if p.Staff != nil {
			return p.Staff.FirstName + " " + p.Staff.LastName
		}
	case RoleClient:
		if p.Client != nil {
			return p.Client.FirstName + " " + p.Client.LastName
		}
	}
	return ""
}
