package model

// PhoneResponse classifies what happened when the caller dialed the branch.
type PhoneResponse string

const (
	PhoneTollFree       PhoneResponse = "toll_free"
	PhoneRegisteredOnly PhoneResponse = "registered_only"
	PhoneInvalidNumber  PhoneResponse = "invalid_number"
	PhoneNoResponse     PhoneResponse = "no_response"
	PhoneSwitchedOff    PhoneResponse = "switched_off"
	PhoneNumberNotFound PhoneResponse = "number_not_found"
)

// Valid reports whether p is one of the known phone response categories.
func (p PhoneResponse) Valid() bool {
	switch p {
	case PhoneTollFree, PhoneRegisteredOnly, PhoneInvalidNumber,
		PhoneNoResponse, PhoneSwitchedOff, PhoneNumberNotFound:
		return true
	}
	return false
}

// Answered reports whether the call connected well enough to collect
// branch details. Only answered calls require a Response value.
func (p PhoneResponse) Answered() bool {
	return p == PhoneTollFree || p == PhoneRegisteredOnly
}

// Response records what the branch reported about its own details.
type Response string

const (
	ResponseAddressChange    Response = "address_change"
	ResponseBranchNameChange Response = "branch_name_change"
	ResponseNoChange         Response = "no_change_in_address"
	ResponseBankShift        Response = "bank_shift"
)

// Valid reports whether r is one of the known response categories.
func (r Response) Valid() bool {
	switch r {
	case ResponseAddressChange, ResponseBranchNameChange, ResponseNoChange, ResponseBankShift:
		return true
	}
	return false
}

// BankRecord is one bank-branch row in the external spreadsheet store.
//
// The descriptive fields (UFI, BankName, IFSCCode, BranchName, Address) are
// read-only from this system's perspective. UserName is the assignment field:
// a non-empty value means the record is claimed by that caller. The outcome
// fields are empty until a caller submits a verified result.
type BankRecord struct {
	ID       int64  `json:"id"`
	UFI      string `json:"ufi"`
	BankName string `json:"bankName"`
	IFSCCode string `json:"ifscCode"`

	BranchName string `json:"branchName"`
	Address    string `json:"address"`

	UserName string `json:"userName,omitempty"`

	PhoneNumber       string        `json:"phoneNumber,omitempty"`
	PhoneResponse     PhoneResponse `json:"phoneResponse,omitempty"`
	Response          Response      `json:"response,omitempty"`
	UpdateAddress     string        `json:"updateAddress,omitempty"`
	UpdatedBranchName string        `json:"updatedBranchName,omitempty"`
	Remarks           string        `json:"remarks,omitempty"`
}

// Available reports whether the record is unclaimed. An empty assignment
// field is the sole signal of availability.
func (b BankRecord) Available() bool {
	return b.UserName == ""
}

// Claimed returns a copy of the record with the assignment field set to name.
// Descriptive and outcome fields are untouched.
func (b BankRecord) Claimed(name string) BankRecord {
	b.UserName = name
	return b
}

// Released returns a copy of the record with the assignment field and every
// outcome field reset to empty, as written back on cancellation.
func (b BankRecord) Released() BankRecord {
	b.UserName = ""
	b.PhoneNumber = ""
	b.PhoneResponse = ""
	b.Response = ""
	b.UpdateAddress = ""
	b.UpdatedBranchName = ""
	b.Remarks = ""
	return b
}

// FormDraft is the transient caller input for the currently presented record.
// It lives in memory only and is discarded on submit or cancel.
type FormDraft struct {
	PhoneNumber       string        `json:"phoneNumber"`
	PhoneResponse     PhoneResponse `json:"phoneResponse"`
	Response          Response      `json:"response,omitempty"`
	UpdateAddress     string        `json:"updateAddress,omitempty"`
	UpdatedBranchName string        `json:"updatedBranchName,omitempty"`
	Remarks           string        `json:"remarks,omitempty"`
}

// MergeInto applies the draft's outcome fields onto a copy of rec and returns
// it. Descriptive fields and the assignment field pass through unchanged, so
// the merged record is safe to hand to a full-record overwrite.
func (d FormDraft) MergeInto(rec BankRecord) BankRecord {
	rec.PhoneNumber = d.PhoneNumber
	rec.PhoneResponse = d.PhoneResponse
	rec.Response = d.Response
	rec.UpdateAddress = d.UpdateAddress
	rec.UpdatedBranchName = d.UpdatedBranchName
	rec.Remarks = d.Remarks
	return rec
}
