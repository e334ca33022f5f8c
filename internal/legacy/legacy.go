// Package legacy reads member and branch exports of the branch-based system.
package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"familytree/internal/models"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor XLSX
var ErrUnsupportedFormat = errors.New("unsupported legacy file format")

// Sheet names looked up in workbooks. The first sheet is used when absent.
const (
	MembersSheet  = "Members"
	BranchesSheet = "Branches"
)

// MemberColumns are the member fields in template order
var MemberColumns = []string{
	"id", "firstName", "lastName", "birthMonth", "birthDay", "birthYear",
	"mobilePhone", "homePhone", "workPhone", "email", "address", "city",
	"state", "zipCode", "anniversaryDate", "notes", "familyBranch", "relationship",
}

// BranchColumns are the branch fields in template order
var BranchColumns = []string{"name", "description", "branchType", "generationLevel"}

// row is one record keyed by normalized field name
type row map[string]string

// normalizeKey folds "First Name", "first_name" and "firstName" together
func normalizeKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(k)
}

func (r row) str(field string) string {
	return strings.TrimSpace(r[normalizeKey(field)])
}

// num parses a whole number leniently: blanks and garbage are zero and
// spreadsheet floats like "1950.0" are truncated.
func (r row) num(field string) int {
	s := r.str(field)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}

func (r row) member() models.LegacyMember {
	return models.LegacyMember{
		ID:              r.str("id"),
		FirstName:       r.str("firstName"),
		LastName:        r.str("lastName"),
		BirthMonth:      r.str("birthMonth"),
		BirthDay:        r.num("birthDay"),
		BirthYear:       r.num("birthYear"),
		MobilePhone:     r.str("mobilePhone"),
		HomePhone:       r.str("homePhone"),
		WorkPhone:       r.str("workPhone"),
		Email:           r.str("email"),
		Address:         r.str("address"),
		City:            r.str("city"),
		State:           r.str("state"),
		ZipCode:         r.str("zipCode"),
		AnniversaryDate: r.str("anniversaryDate"),
		Notes:           r.str("notes"),
		FamilyBranch:    r.str("familyBranch"),
		Relationship:    r.str("relationship"),
	}
}

func (r row) branch() models.LegacyBranch {
	return models.LegacyBranch{
		Name:            r.str("name"),
		Description:     r.str("description"),
		BranchType:      r.str("branchType"),
		GenerationLevel: r.num("generationLevel"),
	}
}

// ReadMembers decodes legacy members from a JSON or XLSX file. The format is
// chosen by the file name's extension.
func ReadMembers(filename string, r io.Reader) ([]models.LegacyMember, error) {
	rows, err := readRows(filename, r, MembersSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}
	members := make([]models.LegacyMember, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.member())
	}
	return members, nil
}

// ReadBranches decodes legacy branches from a JSON or XLSX file. Rows
// without a name are skipped.
func ReadBranches(filename string, r io.Reader) ([]models.LegacyBranch, error) {
	rows, err := readRows(filename, r, BranchesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read branches: %w", err)
	}
	branches := make([]models.LegacyBranch, 0, len(rows))
	for _, row := range rows {
		b := row.branch()
		if b.Name == "" {
			continue
		}
		branches = append(branches, b)
	}
	return branches, nil
}

func readRows(filename string, r io.Reader, sheet string) ([]row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return readJSON(r)
	case ".xlsx":
		return readXLSX(r, sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

func readJSON(r io.Reader) ([]row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	rows := make([]row, 0, len(records))
	for _, rec := range records {
		out := row{}
		for k, v := range rec {
			switch val := v.(type) {
			case nil:
			case string:
				out[normalizeKey(k)] = val
			case json.Number:
				out[normalizeKey(k)] = val.String()
			case bool:
				out[normalizeKey(k)] = strconv.FormatBool(val)
			}
		}
		rows = append(rows, out)
	}
	return rows, nil
}
