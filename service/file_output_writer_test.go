package service

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pyrefactor/domain"
)

func TestFileOutputWriter_Writer(t *testing.T) {
	var status, out bytes.Buffer
	w := NewFileOutputWriter(&status)

	err := w.Write(&out, "", func(dst io.Writer) error {
		_, err := io.WriteString(dst, "report")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "report", out.String())
	assert.Empty(t, status.String())
}

func TestFileOutputWriter_File(t *testing.T) {
	var status bytes.Buffer
	path := filepath.Join(t.TempDir(), "nested", "report.json")

	err := NewFileOutputWriter(&status).Write(nil, path, func(dst io.Writer) error {
		_, err := io.WriteString(dst, "{}")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
	assert.Contains(t, status.String(), "Report generated: ")
}

func TestFileOutputWriter_Errors(t *testing.T) {
	w := NewFileOutputWriter(io.Discard)

	var domainErr domain.DomainError

	err := w.Write(nil, "", func(io.Writer) error { return nil })
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeOutputError, domainErr.Code)

	err = w.Write(io.Discard, "", func(io.Writer) error { return errors.New("boom") })
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeOutputError, domainErr.Code)
	assert.ErrorContains(t, err, "boom")
}
