package capi

import (
	"unicode/utf8"

	"github.com/ghostkyle24/bonusmarmitas/internal/normalize"
)

// RequestContext carries the unhashed per-request fields forwarded
// alongside the matching data.
type RequestContext struct {
	ClientIP  string
	UserAgent string
	FBP       string
	FBC       string
}

// BuildUserData applies the per-field normalization and hashing rules to
// a submission. Required fields are always hashed; optional fields are
// omitted when empty or, for the birthdate, when formatting does not
// yield 8 digits. The email hash doubles as external_id for extra
// matching signal.
func BuildUserData(sub Submission, rctx RequestContext) UserData {
	emailHash := normalize.HashField(sub.Email)

	ud := UserData{
		Email:      []string{emailHash},
		Phone:      []string{normalize.HashField(normalize.FormatPhone(sub.Phone))},
		FirstName:  []string{normalize.HashField(sub.FirstName)},
		LastName:   []string{normalize.HashField(sub.LastName)},
		ExternalID: []string{emailHash},

		ClientIPAddress: rctx.ClientIP,
		ClientUserAgent: rctx.UserAgent,
		FBP:             rctx.FBP,
		FBC:             rctx.FBC,
	}

	if g := normalize.Gender(sub.Gender); g != "" {
		ud.Gender = g
	}

	if sub.Birthdate != "" {
		// A malformed date is dropped, not rejected; the rest of the
		// event still matches on the hashed fields
		if db := normalize.FormatBirthdate(sub.Birthdate); len(db) == 8 {
			ud.Birthdate = db
		}
	}

	if sub.City != "" {
		ud.City = []string{normalize.HashField(sub.City)}
	}

	if sub.State != "" {
		// Passthrough region codes go as a bare string, hashed free
		// text as a one-element array
		if st := normalize.Region(sub.State); utf8.RuneCountInString(st) == 2 {
			ud.State = st
		} else if st != "" {
			ud.State = []string{st}
		}
	}

	if c := normalize.Country(sub.Country); c != "" {
		ud.Country = c
	}

	return ud
}
