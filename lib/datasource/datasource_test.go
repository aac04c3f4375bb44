package datasource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var cartSheet = Sheet{
	Name: "AddProductShoppingCart",
	Records: [][]string{
		{"TestCaseId", "TestCaseName", "ExecutionFlag", "Category", "SubCategory", "Product"},
		{"TC01", "Add skincare product", "Yes", "Skincare", "Face", "Total Moisture Facial Cream"},
		{},
		{"TC02", "Add fragrance", "No", "Fragrance", "Men", "ck IN2U Eau De Toilette Spray for Him"},
		{"TC03", "Add makeup", "Yes", "Makeup", "Eyes"},
	},
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-data.xlsx")
	require.NoError(t, WriteExcel(path, cartSheet, Sheet{
		Name:    "AddProductWishlist",
		Records: [][]string{{"TestCaseId", "TestCaseName", "ExecutionFlag"}},
	}))
	return path
}

func TestReadExcel(t *testing.T) {
	path := writeWorkbook(t)

	rows, err := ReadExcel(path, "AddProductShoppingCart")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var ids []string
	Each(rows, func(r Row) bool {
		ids = append(ids, r.Get("TestCaseId"))
		return true
	})
	require.Empty(t, cmp.Diff([]string{"TC01", "TC02", "TC03"}, ids))

	require.Equal(t, cartSheet.Records[0], rows[0].Fields())
	require.Equal(t, "Total Moisture Facial Cream", rows[0].Get("Product"))
	// trailing empty cells are trimmed by the reader
	product, ok := rows[2].Lookup("Product")
	require.True(t, ok)
	require.Equal(t, "", product)
	require.Equal(t, "", rows[2].Get("NoSuchColumn"))

	rows, err = ReadExcel(path, "AddProductWishlist")
	require.NoError(t, err)
	require.Empty(t, rows)

	sections, err := Sections(path)
	require.NoError(t, err)
	require.Equal(t, []string{"AddProductShoppingCart", "AddProductWishlist"}, sections)
}

func TestReadExcelMissingSheet(t *testing.T) {
	path := writeWorkbook(t)

	cases := []struct {
		sheet      string
		suggestion string
	}{
		{sheet: "AddProductShopingCart", suggestion: "AddProductShoppingCart"},
		{sheet: "addproductwishlist", suggestion: "AddProductWishlist"},
		{sheet: "Zzz", suggestion: ""},
	}
	for _, tc := range cases {
		t.Run(tc.sheet, func(t *testing.T) {
			_, err := ReadExcel(path, tc.sheet)
			var notFound *NotFoundError
			require.True(t, errors.As(err, &notFound), err)
			require.Equal(t, tc.sheet, notFound.Section)
			require.Equal(t, tc.suggestion, notFound.Suggestion)
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteExcel(filepath.Join(dir, "books.xlsx"), Sheet{
		Name: "AddBook",
		Records: [][]string{
			{"TestCaseId", "TestCaseName", "ExecutionFlag", "BookName"},
			{"TC01", "Add book", "Yes", "Git Pocket Guide"},
		},
	}))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "books.csv"),
		[]byte("TestCaseId,TestCaseName,ExecutionFlag,BookName\nTC01,Add book,Yes,\"Speaking JavaScript\"\n\nTC02,Skip,No,x\n"),
		0600,
	))

	rows, err := Open(dir, "books.xlsx", "AddBook")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Git Pocket Guide", rows[0].Get("BookName"))

	rows, err = Open(dir, "books.csv", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Speaking JavaScript", rows[0].Get("BookName"))
	require.Equal(t, map[string]string{
		"TestCaseId": "TC02", "TestCaseName": "Skip", "ExecutionFlag": "No", "BookName": "x",
	}, rows[1].Map())

	_, err = Open(dir, "missing.xlsx", "AddBook")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Empty(t, notFound.Section)
	require.Contains(t, err.Error(), "missing.xlsx not found")

	_, err = Open(dir, "books.json", "")
	require.ErrorContains(t, err, "unsupported data source")
}

func TestParseCSVRaggedRows(t *testing.T) {
	rows, err := parseCSV(strings.NewReader("a,b,c\n1\n2,3,4,5\n"), "inline")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "1", rows[0].Get("a"))
	require.Equal(t, "", rows[0].Get("c"))
	require.Equal(t, "4", rows[1].Get("c"))
}

func TestValuesAreVerbatim(t *testing.T) {
	rows, err := parseCSV(strings.NewReader(" TestCaseId ,ExecutionFlag\nTC01, Yes \n"), "inline")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "TC01", rows[0].Get("TestCaseId"))
	require.Equal(t, " Yes ", rows[0].Get("ExecutionFlag"))
}

func TestEachStops(t *testing.T) {
	rows := []Row{
		NewRow([]string{"id"}, []string{"1"}),
		NewRow([]string{"id"}, []string{"2"}),
	}
	seen := 0
	Each(rows, func(Row) bool {
		seen++
		return false
	})
	require.Equal(t, 1, seen)
}
