// Package ingest loads reconciliation inputs from files. Store, assignment,
// and requirement catalogs arrive as CSV or XLSX exports with a single header
// row; survey submissions, which nest model responses, arrive as a YAML
// bundle. Blank rows are dropped here, semantic validation happens in recon.
package ingest

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/posm-recon/internal/model"
)

// Dataset is a full reconciliation input bundle.
type Dataset struct {
	Stores             []model.Store             `yaml:"stores"`
	DisplayAssignments []model.DisplayAssignment `yaml:"display_assignments"`
	POSMRequirements   []model.POSMRequirement   `yaml:"posm_requirements"`
	Submissions        []model.SurveySubmission  `yaml:"submissions"`
}

// LoadDataset reads a complete YAML bundle.
func LoadDataset(path string) (*Dataset, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read dataset")
	}
	var ds Dataset
	if err := yaml.Unmarshal(buf, &ds); err != nil {
		return nil, eris.Wrap(err, "ingest: parse dataset")
	}
	zap.L().Info("ingest: dataset loaded",
		zap.String("path", path),
		zap.Int("stores", len(ds.Stores)),
		zap.Int("assignments", len(ds.DisplayAssignments)),
		zap.Int("requirements", len(ds.POSMRequirements)),
		zap.Int("submissions", len(ds.Submissions)),
	)
	return &ds, nil
}

// LoadStores reads the store catalog. Columns: store_id, store_name, region,
// province, channel.
func LoadStores(path string) ([]model.Store, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	var out []model.Store
	for _, row := range rows {
		st := model.Store{
			StoreID:   cell(row, 0),
			StoreName: cell(row, 1),
			Region:    cell(row, 2),
			Province:  cell(row, 3),
			Channel:   cell(row, 4),
		}
		if st.StoreID == "" && st.StoreName == "" {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

// LoadDisplayAssignments reads the display assignment catalog. Columns:
// store_id, model, is_displayed, updated_at.
func LoadDisplayAssignments(path string) ([]model.DisplayAssignment, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	var (
		out     []model.DisplayAssignment
		skipped int
	)
	for i, row := range rows {
		da := model.DisplayAssignment{
			StoreID: cell(row, 0),
			Model:   cell(row, 1),
		}
		if da.StoreID == "" && da.Model == "" {
			continue
		}
		displayed, berr := parseBool(cell(row, 2))
		updated, terr := parseTime(cell(row, 3))
		if berr != nil || terr != nil {
			// Dirty rows degrade, they do not abort the import.
			skipped++
			zap.L().Warn("ingest: malformed assignment row skipped",
				zap.Int("row", i+2),
				zap.String("store_id", da.StoreID),
				zap.String("model", da.Model),
			)
			continue
		}
		da.IsDisplayed = displayed
		da.UpdatedAt = updated
		out = append(out, da)
	}
	if skipped > 0 {
		zap.L().Warn("ingest: assignment rows skipped", zap.Int("skipped", skipped), zap.Int("loaded", len(out)))
	}
	return out, nil
}

// LoadPOSMRequirements reads the requirement catalog. Columns: model,
// posm_code, posm_name.
func LoadPOSMRequirements(path string) ([]model.POSMRequirement, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	var out []model.POSMRequirement
	for _, row := range rows {
		req := model.POSMRequirement{
			Model:    cell(row, 0),
			POSMCode: cell(row, 1),
			POSMName: cell(row, 2),
		}
		if req.Model == "" && req.POSMCode == "" {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

// LoadSubmissions reads a YAML list of survey submissions.
func LoadSubmissions(path string) ([]model.SurveySubmission, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read submissions")
	}
	var subs []model.SurveySubmission
	if err := yaml.Unmarshal(buf, &subs); err != nil {
		return nil, eris.Wrap(err, "ingest: parse submissions")
	}
	return subs, nil
}

// parseBool accepts the spellings survey exports use for the display flag.
// An empty cell means displayed.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, eris.Wrapf(err, "ingest: parse bool %q", s)
	}
	return v, nil
}

// parseTime accepts RFC3339 or bare dates. An empty cell yields a zero time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("ingest: parse time %q", s)
}
