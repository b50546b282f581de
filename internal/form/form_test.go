package form_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bankverify/callsheet/internal/form"
	"github.com/bankverify/callsheet/internal/model"
)

func TestForm(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Form Suite")
}

// validDraft returns a draft that passes every rule, for tests to break one
// field at a time.
func validDraft() model.FormDraft {
	return model.FormDraft{
		PhoneNumber:   "9876543210",
		PhoneResponse: model.PhoneTollFree,
		Response:      model.ResponseNoChange,
	}
}

var _ = Describe("Validate", func() {
	Describe("phone number rules", func() {
		Context("when the number is well formed", func() {
			It("should accept it", func() {
				d := validDraft()
				d.PhoneNumber = "9876543210"
				Expect(form.Validate(d)).To(Succeed())
			})
		})

		Context("when the number starts with a zero", func() {
			It("should reject it", func() {
				d := validDraft()
				d.PhoneNumber = "09876543210"
				err := form.Validate(d)
				Expect(err).To(HaveOccurred())

				var verr *form.ValidationError
				Expect(err).To(BeAssignableToTypeOf(verr))
				Expect(err.(*form.ValidationError).Field).To(Equal(form.FieldPhoneNumber))
			})
		})

		Context("when the number is too short", func() {
			It("should reject it", func() {
				d := validDraft()
				d.PhoneNumber = "987654321"
				Expect(form.Validate(d)).To(HaveOccurred())
			})
		})

		Context("when the number is too long", func() {
			It("should reject it", func() {
				d := validDraft()
				d.PhoneNumber = "9876543210123456"
				Expect(form.Validate(d)).To(HaveOccurred())
			})
		})

		Context("when the number contains non-digits", func() {
			It("should reject it", func() {
				d := validDraft()
				d.PhoneNumber = "98765-43210"
				Expect(form.Validate(d)).To(HaveOccurred())
			})
		})
	})

	Describe("phone response rules", func() {
		Context("when the phone response is missing", func() {
			It("should reject the draft", func() {
				d := validDraft()
				d.PhoneResponse = ""
				err := form.Validate(d)
				Expect(err).To(HaveOccurred())
				Expect(err.(*form.ValidationError).Field).To(Equal(form.FieldPhoneResponse))
			})
		})

		Context("when the phone response is not a known category", func() {
			It("should reject the draft", func() {
				d := validDraft()
				d.PhoneResponse = "rang_forever"
				Expect(form.Validate(d)).To(HaveOccurred())
			})
		})

		Context("when the call was not answered", func() {
			It("should not require a response category", func() {
				d := model.FormDraft{
					PhoneNumber:   "9876543210",
					PhoneResponse: model.PhoneSwitchedOff,
				}
				Expect(form.Validate(d)).To(Succeed())
			})
		})
	})

	Describe("conditional requirement rules", func() {
		Context("when the call was answered but no response is set", func() {
			It("should reject the draft", func() {
				for _, pr := range []model.PhoneResponse{model.PhoneTollFree, model.PhoneRegisteredOnly} {
					d := model.FormDraft{
						PhoneNumber:   "9876543210",
						PhoneResponse: pr,
					}
					err := form.Validate(d)
					Expect(err).To(HaveOccurred())
					Expect(err.(*form.ValidationError).Field).To(Equal(form.FieldResponse))
				}
			})
		})

		Context("when an address change has no updated address", func() {
			It("should reject the draft", func() {
				d := validDraft()
				d.Response = model.ResponseAddressChange
				err := form.Validate(d)
				Expect(err).To(HaveOccurred())
				Expect(err.(*form.ValidationError).Field).To(Equal(form.FieldUpdateAddress))
			})
		})

		Context("when a branch name change has no updated name", func() {
			It("should reject the draft", func() {
				d := validDraft()
				d.Response = model.ResponseBranchNameChange
				err := form.Validate(d)
				Expect(err).To(HaveOccurred())
				Expect(err.(*form.ValidationError).Field).To(Equal(form.FieldUpdatedBranchName))
			})
		})

		Context("when a bank shift has no updated address", func() {
			It("should reject the draft", func() {
				d := validDraft()
				d.Response = model.ResponseBankShift
				err := form.Validate(d)
				Expect(err).To(HaveOccurred())
				Expect(err.(*form.ValidationError).Field).To(Equal(form.FieldUpdateAddress))
			})
		})

		Context("when the conditions are satisfied", func() {
			It("should accept an address change with an address", func() {
				d := validDraft()
				d.Response = model.ResponseAddressChange
				d.UpdateAddress = "12 Main Street, Fort District"
				Expect(form.Validate(d)).To(Succeed())
			})

			It("should accept a branch name change with a name", func() {
				d := validDraft()
				d.Response = model.ResponseBranchNameChange
				d.UpdatedBranchName = "Fort Main Branch"
				Expect(form.Validate(d)).To(Succeed())
			})
		})
	})

	Describe("updated address format", func() {
		It("should reject an address that is too short", func() {
			d := validDraft()
			d.Response = model.ResponseAddressChange
			d.UpdateAddress = "a b c"
			Expect(form.Validate(d)).To(HaveOccurred())
		})

		It("should reject an address with too few words", func() {
			d := validDraft()
			d.Response = model.ResponseAddressChange
			d.UpdateAddress = "MainStreetFortDistrict"
			Expect(form.Validate(d)).To(HaveOccurred())
		})

		It("should reject disallowed characters", func() {
			d := validDraft()
			d.Response = model.ResponseAddressChange
			d.UpdateAddress = "12 Main Street #4, Fort"
			Expect(form.Validate(d)).To(HaveOccurred())
		})

		It("should reject an address over 200 characters", func() {
			d := validDraft()
			d.Response = model.ResponseAddressChange
			d.UpdateAddress = strings.Repeat("Main Street ", 20)
			Expect(form.Validate(d)).To(HaveOccurred())
		})
	})

	Describe("updated branch name format", func() {
		It("should reject a name without a leading capital", func() {
			d := validDraft()
			d.Response = model.ResponseBranchNameChange
			d.UpdatedBranchName = "fort main branch"
			Expect(form.Validate(d)).To(HaveOccurred())
		})

		It("should reject a name that is too short", func() {
			d := validDraft()
			d.Response = model.ResponseBranchNameChange
			d.UpdatedBranchName = "Fo"
			Expect(form.Validate(d)).To(HaveOccurred())
		})
	})

	Describe("remarks", func() {
		It("should allow empty remarks", func() {
			d := validDraft()
			d.Remarks = ""
			Expect(form.Validate(d)).To(Succeed())
		})

		It("should reject remarks over 500 characters", func() {
			d := validDraft()
			d.Remarks = strings.Repeat("x", 501)
			Expect(form.Validate(d)).To(HaveOccurred())
		})
	})

	Describe("rule ordering", func() {
		It("should report the structural error before the conditional one", func() {
			// Bad phone number and a missing conditional address: the
			// per-field failure must win.
			d := model.FormDraft{
				PhoneNumber:   "0123",
				PhoneResponse: model.PhoneTollFree,
				Response:      model.ResponseAddressChange,
			}
			err := form.Validate(d)
			Expect(err).To(HaveOccurred())
			Expect(err.(*form.ValidationError).Field).To(Equal(form.FieldPhoneNumber))
		})

		It("should report the answered-call rule before the address rule", func() {
			d := model.FormDraft{
				PhoneNumber:   "9876543210",
				PhoneResponse: model.PhoneTollFree,
			}
			err := form.Validate(d)
			Expect(err).To(HaveOccurred())
			Expect(err.(*form.ValidationError).Field).To(Equal(form.FieldResponse))
		})
	})
})

var _ = Describe("RequiredFields", func() {
	It("should always require phone number and phone response", func() {
		required := form.RequiredFields(model.FormDraft{})
		Expect(required).To(HaveKeyWithValue(form.FieldPhoneNumber, true))
		Expect(required).To(HaveKeyWithValue(form.FieldPhoneResponse, true))
		Expect(required).NotTo(HaveKey(form.FieldResponse))
	})

	It("should require a response for answered calls", func() {
		required := form.RequiredFields(model.FormDraft{PhoneResponse: model.PhoneRegisteredOnly})
		Expect(required).To(HaveKeyWithValue(form.FieldResponse, true))
	})

	It("should require an address for address changes and bank shifts", func() {
		for _, r := range []model.Response{model.ResponseAddressChange, model.ResponseBankShift} {
			required := form.RequiredFields(model.FormDraft{
				PhoneResponse: model.PhoneTollFree,
				Response:      r,
			})
			Expect(required).To(HaveKeyWithValue(form.FieldUpdateAddress, true))
			Expect(required).NotTo(HaveKey(form.FieldUpdatedBranchName))
		}
	})

	It("should require a branch name for branch name changes", func() {
		required := form.RequiredFields(model.FormDraft{
			PhoneResponse: model.PhoneTollFree,
			Response:      model.ResponseBranchNameChange,
		})
		Expect(required).To(HaveKeyWithValue(form.FieldUpdatedBranchName, true))
		Expect(required).NotTo(HaveKey(form.FieldUpdateAddress))
	})

	It("should not require extras when nothing changed", func() {
		required := form.RequiredFields(model.FormDraft{
			PhoneResponse: model.PhoneTollFree,
			Response:      model.ResponseNoChange,
		})
		Expect(required).NotTo(HaveKey(form.FieldUpdateAddress))
		Expect(required).NotTo(HaveKey(form.FieldUpdatedBranchName))
	})
})
