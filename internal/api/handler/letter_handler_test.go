package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/bankverify/callsheet/internal/api/handler"
	"github.com/bankverify/callsheet/internal/letter"
	"github.com/bankverify/callsheet/internal/model"
	"github.com/bankverify/callsheet/tests/mocks"
)

var _ = Describe("LetterHandler", func() {
	var (
		app       *fiber.App
		repo      *mocks.MockBankRepository
		outputDir string
	)

	record := model.BankRecord{
		ID:         42,
		UFI:        "UFI0042",
		BankName:   "State Bank",
		IFSCCode:   "SBIN0000300",
		BranchName: "Fort Main",
		Address:    "23 Fort Road, Mumbai",
	}

	BeforeEach(func() {
		repo = &mocks.MockBankRepository{
			FetchAllFunc: func(ctx context.Context) ([]model.BankRecord, error) {
				return []model.BankRecord{record}, nil
			},
		}
		outputDir = GinkgoT().TempDir()

		gen := letter.NewGenerator(letter.Sender{
			Name:         "Branch Verification Desk",
			Organization: "Bank Records Cell",
		}, zap.NewNop())
		h := handler.NewLetterHandler(repo, gen, outputDir, zap.NewNop())

		app = fiber.New()
		app.Post("/letters/:id", h.Generate)
		app.Post("/letters", h.GenerateBulk)
	})

	Describe("Generate", func() {
		It("should return the letter as a PDF download", func() {
			req := httptest.NewRequest(http.MethodPost, "/letters/42", nil)
			resp, err := app.Test(req, fiber.TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/pdf"))
			Expect(resp.Header.Get("Content-Disposition")).To(ContainSubstring("State_Bank_letter.pdf"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(body[:5]).To(Equal([]byte("%PDF-")))
		})

		It("should return not found for an unknown id", func() {
			req := httptest.NewRequest(http.MethodPost, "/letters/99", nil)
			resp, err := app.Test(req, fiber.TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should reject a non-numeric id", func() {
			req := httptest.NewRequest(http.MethodPost, "/letters/abc", nil)
			resp, err := app.Test(req, fiber.TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GenerateBulk", func() {
		It("should write one letter per record into the output directory", func() {
			req := httptest.NewRequest(http.MethodPost, "/letters", nil)
			resp, err := app.Test(req, fiber.TestConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]int
			Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
			Expect(body["written"]).To(Equal(1))
			Expect(body["total"]).To(Equal(1))

			_, statErr := os.Stat(filepath.Join(outputDir, "State_Bank_Fort_Main_letter.pdf"))
			Expect(statErr).NotTo(HaveOccurred())
		})
	})
})
