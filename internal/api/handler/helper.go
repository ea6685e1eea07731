// Package handler provides HTTP handlers for the API.
package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/internal/report/exporter"
	"github.com/verustcode/valreport/pkg/errors"
)

// Response headers describing a generated report
const (
	HeaderGenerationID  = "X-Generation-ID"
	HeaderPageCount     = "X-Page-Count"
	HeaderImagesDropped = "X-Images-Dropped"
)

// abortWithError hands err to the ErrorHandler middleware
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindRecord decodes the request body as a raw valuation record
func bindRecord(c *gin.Context) (record.Record, error) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, errors.ErrInvalidRecord(fmt.Errorf("request body is empty"))
	}
	rec, err := record.Decode(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.Wrap(errors.ErrCodeTooLarge, "request body too large", err)
		}
		return nil, errors.ErrInvalidRecord(err)
	}
	return rec, nil
}

// parseFormat reads the format query parameter, defaulting to PDF
func parseFormat(c *gin.Context) (exporter.ExportFormat, error) {
	format, err := exporter.ParseFormat(c.Query("format"))
	if err != nil {
		return "", errors.ErrValidation(err.Error())
	}
	return format, nil
}

// sendReport writes a generated file. Previews are sent inline so browsers
// display them; everything else is an attachment.
func sendReport(c *gin.Context, result *exporter.Result, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, result.Filename))
	c.Header(HeaderGenerationID, result.GenerationID)
	c.Header(HeaderImagesDropped, strconv.Itoa(result.DroppedImages))
	if result.Pages > 0 {
		c.Header(HeaderPageCount, strconv.Itoa(result.Pages))
	}
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// queryBool parses a boolean query parameter, treating anything unparsable as false
func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
