// Package export serializes a rendered alignment to PNG, SVG or FASTA.
//
// Artifacts are produced completely in memory before they are handed out or
// written, so a failed export never leaves a truncated file or download.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/oaktreenum/peptoid-msa/internal/fasta"
	"github.com/oaktreenum/peptoid-msa/internal/grid"
	"github.com/oaktreenum/peptoid-msa/internal/render"
)

// Format is an export file type.
type Format string

const (
	PNG   Format = "png"
	SVG   Format = "svg"
	FASTA Format = "fasta"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{PNG, SVG, FASTA}

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat accepts a format name or file extension ("fa", ".svg").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	case "fasta", "fa", "fas":
		return FASTA, nil
	}
	return "", fault.Wrap(fmt.Errorf("%w: %q", ErrUnknownFormat, s),
		ftag.With(ftag.InvalidArgument),
		fmsg.WithDesc("parse format", "Unsupported export format "+s+"; use png, svg or fasta."))
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case SVG:
		return "image/svg+xml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Ext is the file extension of f, with the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename turns a user supplied name into a safe file name with the right
// extension. Empty names fall back to "msa" (images) or "sequences" (FASTA).
func Filename(name string, f Format) string {
	name = filepath.Base(strings.TrimSpace(name))
	if ext := filepath.Ext(name); strings.EqualFold(ext, f.Ext()) {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "._")
	if name == "" {
		name = "msa"
		if f == FASTA {
			name = "sequences"
		}
	}
	return name + f.Ext()
}

// Job is everything needed to produce one artifact.
type Job struct {
	Format  Format
	Grid    *grid.Grid
	Layout  grid.Layout
	Records []fasta.Record
	Render  render.Options
	FASTA   fasta.WriteOptions
}

// Bytes produces the complete artifact.
func Bytes(job Job) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch job.Format {
	case PNG, SVG:
		if job.Grid == nil {
			return nil, fault.Wrap(grid.ErrNoRecords,
				ftag.With(ftag.InvalidArgument),
				fmsg.WithDesc("export without grid", "Nothing to export yet: paste sequences and show the MSA first."))
		}
		if job.Format == PNG {
			err = render.PNG(&buf, job.Grid, job.Layout, job.Render)
		} else {
			err = render.SVG(&buf, job.Grid, job.Layout, job.Render)
		}
	case FASTA:
		if len(job.Records) == 0 {
			return nil, fault.Wrap(grid.ErrNoRecords,
				ftag.With(ftag.InvalidArgument),
				fmsg.WithDesc("export without records", "Nothing to export yet: no sequences were parsed."))
		}
		err = fasta.Write(&buf, job.Records, job.FASTA)
	default:
		return nil, fault.Wrap(fmt.Errorf("%w: %q", ErrUnknownFormat, job.Format),
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("bad format", "Unsupported export format."))
	}
	if err != nil {
		return nil, fault.Wrap(err,
			ftag.With(ftag.Internal),
			fmsg.WithDesc("encode "+string(job.Format), "Export to "+strings.ToUpper(string(job.Format))+" failed."))
	}
	return buf.Bytes(), nil
}

// WriteFile writes the artifact to path through a temporary file in the same
// directory, removing it if anything fails.
func WriteFile(path string, job Job) error {
	data, err := Bytes(job)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fault.Wrap(err, ftag.With(ftag.Internal),
			fmsg.WithDesc("create temp file", "Could not write "+path+"."))
	}
	name := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fault.Wrap(err, ftag.With(ftag.Internal),
			fmsg.WithDesc("write "+name, "Could not write "+path+"."))
	}
	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fault.Wrap(err, ftag.With(ftag.Internal),
			fmsg.WithDesc("close "+name, "Could not write "+path+"."))
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fault.Wrap(err, ftag.With(ftag.Internal),
			fmsg.WithDesc("rename "+name, "Could not write "+path+"."))
	}
	return nil
}

// Issue returns the user-facing message of err, or a generic one.
func Issue(err error) string {
	if err == nil {
		return ""
	}
	if msg := fmsg.GetIssue(err); msg != "" {
		return msg
	}
	return "Export failed."
}
