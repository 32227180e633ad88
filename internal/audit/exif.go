package audit

import (
	"context"
	"encoding/base64"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	"golang.org/x/net/html"

	"github.com/nao1215/harsanitizer/internal/har"
	"github.com/nao1215/harsanitizer/internal/model"
)

// EXIFAnalyzer extracts metadata from images that are still embedded in
// the sanitized document. Images appear as base64 response bodies and as
// data: URLs inside HTML bodies.
//
// This analyzer checks for:
//   - GPS coordinates (location disclosure)
//   - Camera make and model (device identification)
//   - Serial numbers (device tracking)
//   - Author and copyright (identity disclosure)
//   - Software information
type EXIFAnalyzer struct {
	// maxImageSize limits the decoded size of an inspected image (default 5MB).
	maxImageSize int
}

// NewEXIFAnalyzer creates a new EXIFAnalyzer.
func NewEXIFAnalyzer() *EXIFAnalyzer {
	return &EXIFAnalyzer{
		maxImageSize: 5 * 1024 * 1024,
	}
}

// Name returns the analyzer name.
func (a *EXIFAnalyzer) Name() string {
	return "exif"
}

// Category returns the analyzer category.
func (a *EXIFAnalyzer) Category() string {
	return CategoryMetadata
}

// Analyze inspects every response body that is or contains an image.
func (a *EXIFAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	for _, entry := range har.Entries(data.Document()) {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		content := har.ResponseContent(entry)
		text, ok := content.GetString("text")
		if !ok || text == "" {
			continue
		}
		mimeType, _ := content.GetString("mimeType")
		encoding, _ := content.GetString("encoding")
		location := har.RequestURL(entry)

		switch {
		case strings.HasPrefix(mimeType, "image/") && encoding == "base64":
			if imageData, ok := a.decode(text); ok {
				findings = append(findings, a.analyzeImageData(imageData, location)...)
			}
		case strings.HasPrefix(mimeType, "text/html"):
			for _, src := range extractDataImages(text) {
				findings = append(findings, a.analyzeDataURL(src, location)...)
			}
		}
	}

	return findings, nil
}

// extractDataImages returns the data: URLs of every img element in an
// HTML body.
func extractDataImages(body string) []string {
	var sources []string
	tokenizer := html.NewTokenizer(strings.NewReader(body))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sources
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "img" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key == "src" && strings.HasPrefix(attr.Val, "data:image/") {
					sources = append(sources, attr.Val)
				}
			}
		}
	}
}

// analyzeDataURL extracts and analyzes EXIF from a base64 data URL.
func (a *EXIFAnalyzer) analyzeDataURL(dataURL, location string) []model.Finding {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil
	}
	imageData, ok := a.decode(payload)
	if !ok {
		return nil
	}
	return a.analyzeImageData(imageData, location)
}

// decode decodes standard or URL-safe base64 within the size limit.
func (a *EXIFAnalyzer) decode(payload string) ([]byte, bool) {
	if base64.StdEncoding.DecodedLen(len(payload)) > a.maxImageSize {
		return nil, false
	}
	imageData, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		imageData, err = base64.URLEncoding.DecodeString(payload)
		if err != nil {
			return nil, false
		}
	}
	return imageData, true
}

// analyzeImageData extracts EXIF data from image bytes. Findings carry the
// tag name only; tag values such as coordinates stay out of the report.
func (a *EXIFAnalyzer) analyzeImageData(imageData []byte, location string) []model.Finding {
	findings := make([]model.Finding, 0)

	rawExif, err := exif.SearchAndExtractExif(imageData)
	if err != nil || rawExif == nil {
		return findings
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return findings
	}

	for _, entry := range entries {
		tagName := entry.TagName

		switch tagName {
		case "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef":
			findings = append(findings, model.NewFinding(model.FindingExifGPS,
				"GPS Coordinates in Image EXIF",
				"An embedded image contains GPS coordinates in its EXIF metadata.",
				tagName, location))

		case "Make", "Model":
			findings = append(findings, model.NewFinding(model.FindingExifCamera,
				"Camera Information in Image EXIF",
				"An embedded image contains camera make or model information.",
				tagName, location))

		case "SerialNumber", "CameraSerialNumber", "BodySerialNumber", "LensSerialNumber":
			findings = append(findings, model.NewFinding(model.FindingExifSerial,
				"Device Serial Number in Image EXIF",
				"An embedded image contains a device serial number.",
				tagName, location))

		case "Software", "ProcessingSoftware", "HostComputer":
			findings = append(findings, model.NewFinding(model.FindingExifSoftware,
				"Software Information in Image EXIF",
				"An embedded image names the software or computer that processed it.",
				tagName, location))

		case "Artist", "Author", "Copyright", "XPAuthor":
			findings = append(findings, model.NewFinding(model.FindingExifAuthor,
				"Author/Copyright Information in Image EXIF",
				"An embedded image contains author or copyright information.",
				tagName, location))
		}
	}

	return findings
}

// Ensure EXIFAnalyzer implements CheckAnalyzer.
var _ CheckAnalyzer = (*EXIFAnalyzer)(nil)
