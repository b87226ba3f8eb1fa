package capi

import (
	"encoding/json"
	"testing"

	"github.com/ghostkyle24/bonusmarmitas/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSubmission() Submission {
	return Submission{
		Email:     "Maria.Silva@Example.com",
		FirstName: "Maria",
		LastName:  "Silva",
		Phone:     "(11) 99999-9999",
		Gender:    "Feminino",
		Birthdate: "02/05/1990",
		Country:   "brazil",
		State:     "sp",
		City:      "São Paulo",
	}
}

func testContext() RequestContext {
	return RequestContext{
		ClientIP:  "203.0.113.7",
		UserAgent: "Mozilla/5.0",
		FBP:       "fb.1.123.456",
		FBC:       "fb.1.123.789",
	}
}

func TestBuildUserDataHashedFields(t *testing.T) {
	ud := BuildUserData(fullSubmission(), testContext())

	require.Len(t, ud.Email, 1)
	assert.Equal(t, normalize.HashField("Maria.Silva@Example.com"), ud.Email[0])
	assert.Equal(t, ud.Email, ud.ExternalID, "external_id mirrors the email hash")

	require.Len(t, ud.Phone, 1)
	assert.Equal(t, normalize.HashField("11999999999"), ud.Phone[0], "phone is digit-stripped before hashing")

	require.Len(t, ud.FirstName, 1)
	assert.Equal(t, normalize.HashField("maria"), ud.FirstName[0])
	require.Len(t, ud.City, 1)
	assert.Equal(t, normalize.HashField("São Paulo"), ud.City[0])
}

func TestBuildUserDataPassthroughFields(t *testing.T) {
	ud := BuildUserData(fullSubmission(), testContext())

	assert.Equal(t, "f", ud.Gender)
	assert.Equal(t, "19900502", ud.Birthdate)
	assert.Equal(t, "BR", ud.Country)
	assert.Equal(t, "SP", ud.State, "2-letter region rides as a bare string")

	assert.Equal(t, "203.0.113.7", ud.ClientIPAddress)
	assert.Equal(t, "Mozilla/5.0", ud.ClientUserAgent)
	assert.Equal(t, "fb.1.123.456", ud.FBP)
	assert.Equal(t, "fb.1.123.789", ud.FBC)
}

func TestBuildUserDataFreeTextStateIsHashedArray(t *testing.T) {
	sub := fullSubmission()
	sub.State = "São Paulo"
	ud := BuildUserData(sub, testContext())

	arr, ok := ud.State.([]string)
	require.True(t, ok, "hashed state must be an array, got %T", ud.State)
	require.Len(t, arr, 1)
	assert.Equal(t, normalize.HashField("São Paulo"), arr[0])
}

func TestBuildUserDataInvalidBirthdateOmitted(t *testing.T) {
	sub := fullSubmission()
	sub.Birthdate = "may 2nd 1990"
	ud := BuildUserData(sub, testContext())
	assert.Empty(t, ud.Birthdate, "malformed birthdate is dropped, not forwarded")
}

func TestBuildUserDataOptionalFieldsOmitted(t *testing.T) {
	sub := Submission{
		Email:     "a@b.com",
		FirstName: "A",
		LastName:  "B",
		Phone:     "123",
	}
	ud := BuildUserData(sub, RequestContext{ClientIP: "unknown"})

	data, err := json.Marshal(ud)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"gd", "db", "ct", "st", "country"} {
		assert.NotContains(t, raw, key)
	}
	// Contextual fields are always serialized, even when empty
	for _, key := range []string{"client_ip_address", "client_user_agent", "fbp", "fbc"} {
		assert.Contains(t, raw, key)
	}
}

func TestSubmissionValid(t *testing.T) {
	assert.True(t, fullSubmission().Valid())

	for _, mutate := range []func(*Submission){
		func(s *Submission) { s.Email = "" },
		func(s *Submission) { s.FirstName = "" },
		func(s *Submission) { s.LastName = "" },
		func(s *Submission) { s.Phone = "" },
	} {
		sub := fullSubmission()
		mutate(&sub)
		assert.False(t, sub.Valid())
	}
}
