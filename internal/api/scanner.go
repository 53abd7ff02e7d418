package api

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"

	"pantrypal/internal/logger"
	"pantrypal/internal/pantry"
)

// maxScanWidth caps the image size sent to the vision model. Receipts are
// readable well below this and smaller uploads cut latency and cost.
const maxScanWidth = 1024

var allowedImageExts = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
}

// ScanReceipt accepts a receipt photo, extracts its line items with the vision
// model, filters out non-grocery lines and returns the proposed items for the
// user to review. Nothing is written to the pantry here.
func (h *Handler) ScanReceipt(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	format, ok := allowedImageExts[strings.ToLower(filepath.Ext(file.Filename))]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type, use JPEG or PNG"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}

	imageData, format := downscale(raw, format)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	scan, err := h.Vision.ScanReceipt(ctx, imageData, format)
	if err != nil {
		logger.Error("receipt scan failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan receipt"})
		return
	}
	if len(scan.Items) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"items":    []pantry.RawItem{},
			"metadata": scan.Metadata,
			"warning":  "No items could be read from this receipt",
		})
		return
	}

	// Receipts often carry non-food lines (bags, batteries); drop them
	// before the user reviews the list.
	names := make([]string, len(scan.Items))
	for i, item := range scan.Items {
		names[i] = item.Name
	}
	verdicts := h.Normalizer.ClassifyGroceryItems(ctx, names)

	groceries := make([]pantry.RawItem, 0, len(scan.Items))
	skipped := 0
	for i, item := range scan.Items {
		if verdicts[i].IsGrocery {
			groceries = append(groceries, item)
		} else {
			skipped++
		}
	}

	resp := gin.H{
		"items":    groceries,
		"metadata": scan.Metadata,
		"skipped":  skipped,
	}

	if prev, err := h.Store.FindReceiptDuplicate(ctx, userID(c), scan.Metadata); err != nil {
		logger.Warn("duplicate receipt check failed", "error", err)
	} else if prev != nil {
		resp["duplicateWarning"] = gin.H{
			"message":   "This receipt appears to have been scanned before",
			"scannedAt": prev.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// SaveScannedItems persists the reviewed scanner output through the same
// merge path as manual entry, tagged with the receipt source and metadata.
func (h *Handler) SaveScannedItems(c *gin.Context) {
	var req addItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items provided"})
		return
	}
	h.ingest(c, req.Items, pantry.SourceReceipt, req.Metadata)
}

// downscale shrinks oversized images before they go to the vision model.
// Downscaled output is always JPEG; undecodable input passes through as-is.
func downscale(data []byte, format string) ([]byte, string) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, format
	}
	if img.Bounds().Dx() <= maxScanWidth {
		return data, format
	}

	small := resize.Resize(maxScanWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: 85}); err != nil {
		return data, format
	}
	return buf.Bytes(), "jpeg"
}
