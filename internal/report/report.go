// Package report renders a wipe.Report into the engine's persisted JSON
// schema and writes it to disk, one timestamped file per run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"wipeengine/internal/verify"
	"wipeengine/internal/wipe"
)

// Document is the on-disk JSON schema, discriminated by Kind the same
// way wipe.Report is (spec §9's tagged-union design note).
type Document struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Error     string    `json:"error,omitempty"`

	File   *FileEntry   `json:"file,omitempty"`
	Folder *FolderEntry `json:"folder,omitempty"`
	Device *DeviceEntry `json:"device,omitempty"`
}

// FileEntry is the JSON shape of wipe.FileWipeOutcome.
type FileEntry struct {
	OriginalHash    string                `json:"original_hash,omitempty"`
	VerifiedChanged bool                  `json:"verified_changed"`
	PassesCompleted int                   `json:"passes_completed"`
	Verification    *verify.FileRecord    `json:"verification,omitempty"`
}

// FolderEntry is the JSON shape of wipe.FolderReport.
type FolderEntry struct {
	RootRemoved    bool        `json:"root_removed"`
	FilesTotal     int         `json:"files_total"`
	FilesSucceeded int         `json:"files_succeeded"`
	Residual       []string    `json:"residual,omitempty"`
	Files          []FileEntry `json:"files,omitempty"`
}

// DeviceEntry is the JSON shape of wipe.DeviceReport.
type DeviceEntry struct {
	Type            string               `json:"type"`
	DevicePath      string               `json:"device_path,omitempty"`
	TotalSize       uint64               `json:"total_size"`
	TotalSectors    uint64               `json:"total_sectors"`
	PassesCompleted int                  `json:"passes_completed"`
	Verification    *verify.DeviceRecord `json:"verification,omitempty"`
	Steps           []stepEntry          `json:"steps,omitempty"`
}

type stepEntry struct {
	Name      string `json:"name"`
	Succeeded bool   `json:"succeeded"`
	Detail    string `json:"detail,omitempty"`
}

// FromReport converts an engine wipe.Report into its persisted form,
// assigning it a fresh UUID.
func FromReport(r *wipe.Report) *Document {
	doc := &Document{
		ID:        uuid.NewString(),
		Kind:      string(r.Kind),
		Target:    r.Target,
		Method:    string(r.Method),
		Status:    string(r.Status),
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	}
	if r.Error != nil {
		doc.Error = r.Error.Error()
	}
	if r.File != nil {
		doc.File = fileEntry(r.File)
	}
	if r.Folder != nil {
		doc.Folder = folderEntry(r.Folder)
	}
	if r.Device != nil {
		doc.Device = deviceEntry(r.Device)
	}
	return doc
}

func fileEntry(f *wipe.FileWipeOutcome) *FileEntry {
	return &FileEntry{
		OriginalHash:    f.OriginalHash,
		VerifiedChanged: f.VerifiedChanged,
		PassesCompleted: f.PassesCompleted,
		Verification:    f.Verification,
	}
}

func folderEntry(f *wipe.FolderReport) *FolderEntry {
	entries := make([]FileEntry, len(f.Files))
	for i := range f.Files {
		entries[i] = *fileEntry(&f.Files[i])
	}
	return &FolderEntry{
		RootRemoved:    f.RootRemoved,
		FilesTotal:     f.FilesTotal,
		FilesSucceeded: f.FilesSucceeded,
		Residual:       f.Residual,
		Files:          entries,
	}
}

func deviceEntry(d *wipe.DeviceReport) *DeviceEntry {
	e := &DeviceEntry{Type: string(d.Type)}
	if d.Device != nil {
		e.DevicePath = d.Device.DevicePath
		e.TotalSize = d.Device.TotalSize
		e.TotalSectors = d.Device.TotalSectors
		e.PassesCompleted = d.Device.PassesCompleted
		e.Verification = d.Device.Verification
	}
	for _, s := range d.Steps {
		e.Steps = append(e.Steps, stepEntry{Name: s.Name, Succeeded: s.Succeeded, Detail: s.Detail})
	}
	return e
}

// Save writes doc as indented JSON to dir, named
// wipeengine_report_<unix-seconds>_<method>.json, mirroring the
// teacher's op_<unix-seconds>_<method> naming convention.
func Save(dir string, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("report: create dir: %w", err)
	}
	name := fmt.Sprintf("wipeengine_report_%d_%s.json", doc.StartedAt.Unix(), doc.Method)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("report: write: %w", err)
	}
	return path, nil
}
