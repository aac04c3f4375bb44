package storefront

import "storefront-e2e/lib/datasource"

// SampleWorkbook is a workbook that passes against the local storefront twin
// when run in order on a fresh twin.
func SampleWorkbook() []datasource.Sheet {
	header := []string{"TestCaseId", "TestCaseName", "ExecutionFlag", FieldCategory, FieldSubCategory, FieldProduct}
	return []datasource.Sheet{
		{Name: SheetAddToCart, Records: [][]string{
			header,
			{"TC_01", "Add Sandals to Cart", "Yes", "Apparel & accessories", "Shoes", "Ladies Wedge Sandals"},
			{"TC_02", "Add T-Shirt to Cart", "Yes", "Apparel & accessories", "T-shirts", "Casual 3/4 Sleeve Baseball T-Shirt"},
			{"TC_03", "Add Mascara to Cart", "No", "Makeup", "Eyes", "Waterproof Mascara"},
		}},
		{Name: SheetAddToWishlist, Records: [][]string{
			header,
			{"TC_04", "Add Moisturiser to Wishlist", "Yes", "Makeup", "Face", "Tinted Moisturiser"},
		}},
		{Name: SheetDeleteFromCart, Records: [][]string{
			header,
			{"TC_05", "Delete Sandals from Cart", "Yes", "Apparel & accessories", "Shoes", "Ladies Wedge Sandals"},
			{"TC_06", "Delete Sneakers from Cart", "Yes", "Apparel & accessories", "Shoes", "Canvas Lace-Up Sneakers"},
		}},
		{Name: SheetDeleteFromWishlist, Records: [][]string{
			header,
			{"TC_07", "Delete Moisturiser from Wishlist", "Yes", "Makeup", "Face", "Tinted Moisturiser"},
		}},
	}
}
