package handler

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/bankverify/callsheet/internal/letter"
	"github.com/bankverify/callsheet/internal/repository"
)

// LetterHandler serves the printable letter/QR artifacts.
type LetterHandler struct {
	repo      repository.BankRepository
	generator *letter.Generator
	outputDir string
	logger    *zap.Logger
}

// NewLetterHandler creates a new handler instance.
func NewLetterHandler(repo repository.BankRepository, generator *letter.Generator, outputDir string, logger *zap.Logger) *LetterHandler {
	return &LetterHandler{repo: repo, generator: generator, outputDir: outputDir, logger: logger}
}

// Generate renders the letter PDF for one record and returns it as a
// download.
func (h *LetterHandler) Generate(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid record id",
		})
	}

	records, err := h.repo.FetchAll(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	for _, rec := range records {
		if rec.ID != id {
			continue
		}

		var buf bytes.Buffer
		if err := h.generator.Generate(rec, &buf); err != nil {
			h.logger.Error("letter generation failed", zap.Int64("id", id), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Letter generation failed",
			})
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename=%q`, letter.Filename(rec)))
		return c.Status(fiber.StatusOK).Send(buf.Bytes())
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": "Bank record not found",
	})
}

// GenerateBulk renders one letter per record into the configured output
// directory.
func (h *LetterHandler) GenerateBulk(c fiber.Ctx) error {
	records, err := h.repo.FetchAll(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	written, err := h.generator.GenerateBulk(c.Context(), records, h.outputDir)
	if err != nil {
		h.logger.Error("bulk letter generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Bulk letter generation failed",
			"written": written,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"written": written,
		"total":   len(records),
	})
}
