package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/injurydash/internal/model"
)

// Default file names inside a data directory.
const (
	InjuriesFile   = "injuries.csv"
	ProductsFile   = "products.csv"
	PopulationFile = "population.csv"
)

var (
	injuryColumns     = []string{"trmt_date", "age", "sex", "race", "body_part", "diag", "location", "prod_code", "weight", "narrative"}
	productColumns    = []string{"prod_code", "title"}
	populationColumns = []string{"age", "sex", "population"}
)

// LoadDir reads the three CSV tables from dir and builds a Store.
func LoadDir(dir string) (*Store, error) {
	injuries, err := readFile(filepath.Join(dir, InjuriesFile), ReadInjuries)
	if err != nil {
		return nil, err
	}
	products, err := readFile(filepath.Join(dir, ProductsFile), ReadProducts)
	if err != nil {
		return nil, err
	}
	population, err := readFile(filepath.Join(dir, PopulationFile), ReadPopulation)
	if err != nil {
		return nil, err
	}
	return New(injuries, products, population)
}

func readFile[T any](path string, read func(io.Reader, string) ([]T, error)) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	return read(file, filepath.Base(path))
}

// ReadInjuries parses injuries.csv rows. name is used in error messages.
func ReadInjuries(r io.Reader, name string) ([]model.InjuryRecord, error) {
	var out []model.InjuryRecord
	err := readRows(r, name, injuryColumns, func(row rowReader) error {
		date, err := row.date("trmt_date")
		if err != nil {
			return err
		}
		age, err := row.integer("age")
		if err != nil {
			return err
		}
		sex, err := row.sex("sex")
		if err != nil {
			return err
		}
		code, err := row.integer("prod_code")
		if err != nil {
			return err
		}
		weight, err := row.number("weight")
		if err != nil {
			return err
		}
		if age < 0 {
			return row.fail("age", fmt.Errorf("%w: negative age %d", ErrMalformedValue, age))
		}
		out = append(out, model.InjuryRecord{
			TreatmentDate: date,
			Age:           age,
			Sex:           sex,
			Race:          row.str("race"),
			BodyPart:      row.str("body_part"),
			Diagnosis:     row.str("diag"),
			Location:      row.str("location"),
			ProductCode:   code,
			Weight:        weight,
			Narrative:     row.str("narrative"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadProducts parses products.csv rows.
func ReadProducts(r io.Reader, name string) ([]model.ProductEntry, error) {
	var out []model.ProductEntry
	err := readRows(r, name, productColumns, func(row rowReader) error {
		code, err := row.integer("prod_code")
		if err != nil {
			return err
		}
		out = append(out, model.ProductEntry{Code: code, Title: row.str("title")})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadPopulation parses population.csv rows.
func ReadPopulation(r io.Reader, name string) ([]model.PopulationEntry, error) {
	var out []model.PopulationEntry
	err := readRows(r, name, populationColumns, func(row rowReader) error {
		age, err := row.integer("age")
		if err != nil {
			return err
		}
		sex, err := row.sex("sex")
		if err != nil {
			return err
		}
		pop, err := row.integer("population")
		if err != nil {
			return err
		}
		if pop < 0 {
			return row.fail("population", fmt.Errorf("%w: negative population %d", ErrMalformedValue, pop))
		}
		out = append(out, model.PopulationEntry{Age: age, Sex: sex, Population: pop})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type rowReader struct {
	file   string
	line   int
	index  map[string]int
	fields []string
}

func (r rowReader) str(col string) string {
	return r.fields[r.index[col]]
}

func (r rowReader) fail(col string, err error) error {
	return &LoadError{File: r.file, Line: r.line, Column: col, Err: err}
}

func (r rowReader) integer(col string) (int, error) {
	raw := strings.TrimSpace(r.str(col))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, r.fail(col, fmt.Errorf("%w: %q is not an integer", ErrMalformedValue, raw))
	}
	return v, nil
}

func (r rowReader) number(col string) (float64, error) {
	raw := strings.TrimSpace(r.str(col))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, r.fail(col, fmt.Errorf("%w: %q is not a number", ErrMalformedValue, raw))
	}
	return v, nil
}

func (r rowReader) sex(col string) (model.Sex, error) {
	v, err := model.ParseSex(r.str(col))
	if err != nil {
		return "", r.fail(col, fmt.Errorf("%w: %v", ErrMalformedValue, err))
	}
	return v, nil
}

func (r rowReader) date(col string) (time.Time, error) {
	t, err := ParseDate(r.str(col))
	if err != nil {
		return time.Time{}, r.fail(col, err)
	}
	return t, nil
}

func readRows(r io.Reader, name string, required []string, handle func(rowReader) error) error {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &LoadError{File: name, Line: 1, Err: fmt.Errorf("%w: file is empty", ErrMissingColumn)}
		}
		return fmt.Errorf("failed to read %s header: %w", name, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[strings.ToLower(h)] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return &LoadError{File: name, Line: 1, Column: col, Err: ErrMissingColumn}
		}
	}

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		line, _ := reader.FieldPos(0)
		if err := handle(rowReader{file: name, line: line, index: index, fields: fields}); err != nil {
			return err
		}
	}
}
