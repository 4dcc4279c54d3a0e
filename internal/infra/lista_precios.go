package infra

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LeerListaPrecios reads a supplier price list into raw rows. The format is
// picked from the file extension: .xlsx reads the first sheet, anything else
// is parsed as CSV (comma or semicolon separated).
func LeerListaPrecios(r io.Reader, nombreArchivo string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(nombreArchivo), ".xlsx") {
		return leerXLSX(r)
	}
	return leerCSV(r)
}

func leerXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("lista de precios: xlsx invalido: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("lista de precios: read sheet: %w", err)
	}
	return rows, nil
}

func leerCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if primera, _, _ := strings.Cut(string(data), "\n"); strings.Count(primera, ";") > strings.Count(primera, ",") {
		reader.Comma = ';'
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("lista de precios: csv invalido: %w", err)
	}
	return rows, nil
}
