// Package form is the declarative schema for the call-outcome form: field
// rules, cross-field requirement conditions, and submission validation.
package form

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bankverify/callsheet/internal/model"
)

// Field names as the single-page form knows them.
const (
	FieldPhoneNumber       = "phoneNumber"
	FieldPhoneResponse     = "phoneResponse"
	FieldResponse          = "response"
	FieldUpdateAddress     = "updateAddress"
	FieldUpdatedBranchName = "updatedBranchName"
	FieldRemarks           = "remarks"
)

// Field format rules. Phone numbers are plain digit strings with no leading
// zero; address and branch name carry the character sets the downstream
// mailing workflow accepts.
var (
	phoneNumberRegex  = regexp.MustCompile(`^[1-9][0-9]{9,14}$`)
	addressCharsRegex = regexp.MustCompile(`^[A-Za-z0-9 ,.\-]+$`)
	branchNameRegex   = regexp.MustCompile(`^[A-Z][A-Za-z0-9 \-]*$`)
)

const (
	maxRemarksLength   = 500
	minAddressLength   = 10
	maxAddressLength   = 200
	minAddressWords    = 3
	minBranchNameChars = 3
	maxBranchNameChars = 100
)

// ValidationError reports the first unmet rule found. It is always
// recoverable: the caller fixes the draft and resubmits, and no store call is
// made while one is outstanding.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RequiredFields returns the set of fields the draft currently requires,
// as a pure function of the draft's own enum values. The single-page form
// queries it on every change to drive live field visibility; Validate
// enforces the same conditions at submission.
func RequiredFields(d model.FormDraft) map[string]bool {
	required := map[string]bool{
		FieldPhoneNumber:   true,
		FieldPhoneResponse: true,
	}
	if d.PhoneResponse.Answered() {
		required[FieldResponse] = true
	}
	if d.Response == model.ResponseAddressChange || d.Response == model.ResponseBankShift {
		required[FieldUpdateAddress] = true
	}
	if d.Response == model.ResponseBranchNameChange {
		required[FieldUpdatedBranchName] = true
	}
	return required
}

// Validate checks the draft against the full schema. Per-field structural
// rules run first; the cross-field requirement rules run only once every
// provided value is structurally sound, in fixed order: response required
// after an answered call, then address change, branch name change, and bank
// shift. The first violation is returned alone.
func Validate(d model.FormDraft) error {
	if err := validateFields(d); err != nil {
		return err
	}
	return validateConditions(d)
}

func validateFields(d model.FormDraft) error {
	if !phoneNumberRegex.MatchString(d.PhoneNumber) {
		return invalid(FieldPhoneNumber, "must be 10 to 15 digits and not start with 0")
	}

	if d.PhoneResponse == "" {
		return invalid(FieldPhoneResponse, "a phone response category is required")
	}
	if !d.PhoneResponse.Valid() {
		return invalid(FieldPhoneResponse, "unknown phone response category")
	}

	if d.Response != "" && !d.Response.Valid() {
		return invalid(FieldResponse, "unknown response category")
	}

	if d.UpdateAddress != "" {
		if len(d.UpdateAddress) < minAddressLength || len(d.UpdateAddress) > maxAddressLength {
			return invalid(FieldUpdateAddress, "must be between 10 and 200 characters")
		}
		if !addressCharsRegex.MatchString(d.UpdateAddress) {
			return invalid(FieldUpdateAddress, "may only contain letters, digits, spaces, commas, dots and hyphens")
		}
		if len(strings.Fields(d.UpdateAddress)) < minAddressWords {
			return invalid(FieldUpdateAddress, "must contain at least 3 words")
		}
	}

	if d.UpdatedBranchName != "" {
		if len(d.UpdatedBranchName) < minBranchNameChars || len(d.UpdatedBranchName) > maxBranchNameChars {
			return invalid(FieldUpdatedBranchName, "must be between 3 and 100 characters")
		}
		if !branchNameRegex.MatchString(d.UpdatedBranchName) {
			return invalid(FieldUpdatedBranchName, "must start with a capital letter and contain only letters, digits, spaces and hyphens")
		}
	}

	if len(d.Remarks) > maxRemarksLength {
		return invalid(FieldRemarks, "must be at most 500 characters")
	}

	return nil
}

func validateConditions(d model.FormDraft) error {
	if d.PhoneResponse.Answered() && d.Response == "" {
		return invalid(FieldResponse, "a response is required when the call was answered")
	}
	if d.Response == model.ResponseAddressChange && d.UpdateAddress == "" {
		return invalid(FieldUpdateAddress, "an updated address is required for an address change")
	}
	if d.Response == model.ResponseBranchNameChange && d.UpdatedBranchName == "" {
		return invalid(FieldUpdatedBranchName, "an updated branch name is required for a branch name change")
	}
	if d.Response == model.ResponseBankShift && d.UpdateAddress == "" {
		return invalid(FieldUpdateAddress, "an updated address is required for a bank shift")
	}
	return nil
}
