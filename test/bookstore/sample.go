package bookstore

import "storefront-e2e/lib/datasource"

// SampleWorkbook uses titles from the public demo catalog, which the local
// bookstore twin serves as well.
func SampleWorkbook() []datasource.Sheet {
	header := []string{"TestCaseId", "TestCaseName", "ExecutionFlag", FieldBookName, FieldNewBookName}
	return []datasource.Sheet{
		{Name: SheetAddBook, Records: [][]string{
			header,
			{"TC_01", "Add Book", "Yes", "Git Pocket Guide", ""},
			{"TC_02", "Add Book", "Yes", "Speaking JavaScript", ""},
			{"TC_03", "Add Book", "No", "You Don't Know JS", ""},
		}},
		{Name: SheetEditBook, Records: [][]string{
			header,
			{"TC_04", "Edit Book", "Yes", "Git Pocket Guide", "Eloquent JavaScript, Second Edition"},
		}},
		{Name: SheetDeleteBook, Records: [][]string{
			header,
			{"TC_05", "Delete Book", "Yes", "Understanding ECMAScript 6", ""},
		}},
	}
}
