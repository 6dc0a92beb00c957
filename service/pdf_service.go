package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"
)

// TextExtractor turns a stored deck file into plain text. It returns "" on
// any failure and never returns an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, filePath string) string
}

type PDFServiceConfig struct {
	OCRLanguages string // tesseract -l value, e.g. "eng"
	TempDir      string
}

// PDFService extracts text page by page with pdftotext, falling back to
// OCR (pdftoppm + tesseract) for pages without a text layer.
type PDFService struct {
	ocrLanguages string
	tempDir      string
	logger       *zap.Logger
}

var DefaultPDFServiceConfig = PDFServiceConfig{
	OCRLanguages: "eng",
}

func NewPDFService(config PDFServiceConfig, logger *zap.Logger) *PDFService {
	if config.OCRLanguages == "" {
		config.OCRLanguages = DefaultPDFServiceConfig.OCRLanguages
	}
	return &PDFService{
		ocrLanguages: config.OCRLanguages,
		tempDir:      config.TempDir,
		logger:       logger,
	}
}

func (s *PDFService) ExtractText(ctx context.Context, filePath string) string {
	log := s.logger.With(zap.String("file", filePath))

	if _, err := os.Stat(filePath); err != nil {
		log.Warn("cannot read deck file", zap.Error(err))
		return ""
	}
	totalPages, err := api.PageCountFile(filePath)
	if err != nil {
		log.Warn("not a readable PDF", zap.Error(err))
		return ""
	}

	var text strings.Builder
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if ctx.Err() != nil {
			log.Warn("text extraction cancelled", zap.Error(ctx.Err()))
			return ""
		}
		pageText, err := s.extractPage(ctx, filePath, pageNum)
		if err != nil {
			// Skip failed pages instead of failing the whole deck.
			log.Debug("no text on page", zap.Int("page", pageNum), zap.Error(err))
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	return strings.TrimSpace(text.String())
}

func (s *PDFService) extractPage(ctx context.Context, filePath string, pageNumber int) (string, error) {
	text, err := s.extractTextWithPdftotext(ctx, filePath, pageNumber)
	if err != nil || text == "" {
		text, err = s.extractTextWithTesseract(ctx, filePath, pageNumber)
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
	}
	return text, nil
}

func (s *PDFService) extractTextWithPdftotext(ctx context.Context, filePath string, pageNumber int) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		filePath, "-")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext page %d: %w", pageNumber, err)
	}

	if trimmed := cleanText(out.String()); trimmed != "" {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

func (s *PDFService) extractTextWithTesseract(ctx context.Context, pdfPath string, pageNumber int) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not available: %w", err)
	}
	tempFolder, err := os.MkdirTemp(s.tempDir, "deck-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempFolder)

	convertCmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-png", pdfPath, filepath.Join(tempFolder, "page"))
	if err := convertCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to convert page %d to image: %w", pageNumber, err)
	}
	images, err := filepath.Glob(filepath.Join(tempFolder, "page-*.png"))
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("no image rendered for page %d", pageNumber)
	}

	ocrCmd := exec.CommandContext(ctx, "tesseract",
		images[0],
		"stdout",
		"-l", s.ocrLanguages,
		"--oem", "3", // LSTM engine
		"--psm", "3", // automatic page segmentation
	)
	var ocrOut bytes.Buffer
	ocrCmd.Stdout = &ocrOut
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}

	if trimmed := cleanText(ocrOut.String()); trimmed != "" {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

var textReplacer = strings.NewReplacer(
	"\u0000", "", // null
	"�", "", // replacement character
	"\u001b", "", // escape
	"\r", "",
	"\f", "\n",
)

func cleanText(text string) string {
	cleaned := textReplacer.Replace(text)
	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}
	return strings.TrimSpace(cleaned)
}
