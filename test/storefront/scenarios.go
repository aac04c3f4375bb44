package storefront

import (
	"context"
	"fmt"
	"strings"

	"storefront-e2e/lib/money"
	"storefront-e2e/lib/pages"
	"storefront-e2e/lib/scenario"
	"storefront-e2e/lib/uiactions"
)

// sheets of the storefront workbook
const (
	SheetAddToCart          = "AddProductShoppingCart"
	SheetAddToWishlist      = "AddProductWishlist"
	SheetDeleteFromCart     = "DeleteProductFromShoppingCart"
	SheetDeleteFromWishlist = "DeleteProductFromWishlist"
)

// columns read by the scenarios
const (
	FieldCategory    = "ProductCategoryName"
	FieldSubCategory = "ProductSubCategoryName"
	FieldProduct     = "ProductName"
)

func failed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", pages.ErrPostCondition, fmt.Sprintf(format, args...))
}

func verifyLoggedIn(ctx context.Context, sc *scenario.Context, account *pages.MyAccountPage) error {
	return sc.Step("Verify if application is logged in", func() error {
		return account.VerifyLoggedIn(ctx)
	})
}

// selectProduct walks category menu, sub category listing and product link.
func selectProduct(ctx context.Context, sc *scenario.Context, a *uiactions.Actions, action string) error {
	row := sc.Row
	account := pages.NewMyAccountPage(a)
	err := sc.Step("Select Product Category and Sub Category", func() error {
		err := account.HoverOnProductCategory(ctx, row.Get(FieldCategory))
		if err != nil {
			return err
		}
		return account.SelectProductSubCategory(ctx, row.Get(FieldSubCategory))
	})
	if err != nil {
		return err
	}

	selection := pages.NewProductSelectionPage(a)
	return sc.Step("Select Product to "+action, func() error {
		sc.Log.Info("Verify Product Sub Category Heading")
		err := selection.VerifySubCategoryHeading(ctx, row.Get(FieldSubCategory))
		if err != nil {
			return err
		}
		sc.Log.Info("Select Product")
		return selection.SelectProduct(ctx, row.Get(FieldProduct))
	})
}

func AddProductToCart(ctx context.Context, sc *scenario.Context, a *uiactions.Actions) error {
	product := sc.Row.Get(FieldProduct)
	account := pages.NewMyAccountPage(a)
	details := pages.NewProductDetailsPage(a)
	cart := pages.NewShoppingCartPage(a)

	err := verifyLoggedIn(ctx, sc, account)
	if err != nil {
		return err
	}
	err = selectProduct(ctx, sc, a, "Add to Cart")
	if err != nil {
		return err
	}
	err = sc.Step("Add selected Product in Shopping Cart", func() error {
		sc.Log.Info("Verify Product Name in Header")
		err := details.VerifyProductHeading(ctx, product)
		if err != nil {
			return err
		}
		sc.Log.Info("Add Product to Shopping Cart")
		return details.AddToCart(ctx)
	})
	if err != nil {
		return err
	}
	err = sc.Step("Verify If Product is added in Shopping Cart", func() error {
		err := cart.VerifyHeading(ctx)
		if err != nil {
			return err
		}
		if !cart.HasProduct(ctx, product) {
			return failed("product %s is not present in shopping cart after addition", product)
		}
		sc.Log.Info("Product " + product + " is present in Shopping Cart after addition.")
		return cart.ContinueShopping(ctx)
	})
	if err != nil {
		return err
	}
	return sc.Step("View Shopping Cart Item Count and Price on My Account Page", func() error {
		return account.ViewCartItemsCountAndPrice(ctx)
	})
}

// totalStep compares the displayed total with the line items plus the flat
// shipping rate.
func totalStep(sc *scenario.Context, lines []string, displayed string) error {
	sum, err := money.Sum(lines)
	if err != nil {
		return err
	}
	sc.Log.Info(fmt.Sprintf("Calculated Total Amount from Products: %.2f", sum))
	expected, err := money.ExpectTotal(lines, displayed, money.FlatShipping)
	sc.Log.Info("Displayed Total Amount: " + displayed)
	sc.Log.Info(fmt.Sprintf("Expected Total Amount (Calculated + Shipping): %.2f", expected))
	if err != nil {
		return fmt.Errorf("total amount mismatch: %w", err)
	}
	sc.Log.Info("Total Amount matches the expected value.")
	return nil
}

// viewCart opens the cart and requires at least one product in it.
func viewCart(ctx context.Context, sc *scenario.Context, account *pages.MyAccountPage, cart *pages.ShoppingCartPage, purpose string) error {
	return sc.Step("View Shopping Cart", func() error {
		err := account.ClickShoppingCartLink(ctx)
		if err != nil {
			return err
		}
		err = cart.VerifyHeading(ctx)
		if err != nil {
			return err
		}
		ok, err := cart.HasAtLeastProducts(ctx, 1)
		if err != nil {
			return err
		}
		if !ok {
			return failed("no product is present in shopping cart to %s", purpose)
		}
		sc.Log.Info("Product(s) present in Shopping Cart to " + purpose + ".")
		_, err = cart.ProductNames(ctx)
		return err
	})
}

func VerifyShoppingCartTotal(ctx context.Context, sc *scenario.Context, a *uiactions.Actions) error {
	account := pages.NewMyAccountPage(a)
	cart := pages.NewShoppingCartPage(a)

	err := verifyLoggedIn(ctx, sc, account)
	if err != nil {
		return err
	}
	err = viewCart(ctx, sc, account, cart, "verify total amount")
	if err != nil {
		return err
	}
	return sc.Step("Calculate Shopping Cart Total Amount", func() error {
		lines, err := cart.LineItemTotals(ctx)
		if err != nil {
			return err
		}
		displayed, err := cart.DisplayedTotal(ctx)
		if err != nil {
			return err
		}
		return totalStep(sc, lines, displayed)
	})
}

func AddProductToWishlist(ctx context.Context, sc *scenario.Context, a *uiactions.Actions) error {
	product := sc.Row.Get(FieldProduct)
	account := pages.NewMyAccountPage(a)
	details := pages.NewProductDetailsPage(a)
	wishlist := pages.NewWishlistPage(a)

	err := verifyLoggedIn(ctx, sc, account)
	if err != nil {
		return err
	}
	err = selectProduct(ctx, sc, a, "Add to Wishlist")
	if err != nil {
		return err
	}
	err = sc.Step("Check Product is not already in Wishlist", func() error {
		present, err := details.IsRemoveFromWishlistVisible(ctx)
		if err != nil {
			return err
		}
		if present {
			return sc.Skip("product " + product + " is already present in wishlist before addition")
		}
		sc.Log.Info("Product " + product + " is not present in Wishlist before addition.")
		return nil
	})
	if err != nil {
		return err
	}
	err = sc.Step("Add selected Product to Wishlist", func() error {
		err := details.VerifyProductHeading(ctx, product)
		if err != nil {
			return err
		}
		return details.AddToWishlist(ctx)
	})
	if err != nil {
		return err
	}
	err = sc.Step("Verify If Remove from Wishlist link is visible after adding product to wish list", func() error {
		present, err := details.IsRemoveFromWishlistVisible(ctx)
		if err != nil {
			return err
		}
		if !present {
			return failed("remove from wishlist link is not visible")
		}
		sc.Log.Info("Remove from Wishlist link is visible")
		return nil
	})
	if err != nil {
		return err
	}
	err = sc.Step("Move to Wishlist and verify page heading", func() error {
		err := details.GoToWishlist(ctx)
		if err != nil {
			return err
		}
		if !wishlist.VerifyHeading(ctx, "My wish list") {
			return failed("wishlist heading does not read %q", "My wish list")
		}
		return nil
	})
	if err != nil {
		return err
	}
	return sc.Step("Verify Product is added to Wishlist", func() error {
		if !wishlist.HasProduct(ctx, product) {
			return failed("product %s is not present in wishlist after addition", product)
		}
		sc.Log.Info("Product " + product + " is present in Wishlist after addition.")
		return nil
	})
}

func DeleteProductFromCart(ctx context.Context, sc *scenario.Context, a *uiactions.Actions) error {
	product := sc.Row.Get(FieldProduct)
	account := pages.NewMyAccountPage(a)
	cart := pages.NewShoppingCartPage(a)

	err := verifyLoggedIn(ctx, sc, account)
	if err != nil {
		return err
	}
	err = sc.Step("View Shopping Cart before Deletion", func() error {
		err := account.ClickShoppingCartLink(ctx)
		if err != nil {
			return err
		}
		err = cart.VerifyHeading(ctx)
		if err != nil {
			return err
		}
		if !cart.HasProduct(ctx, product) {
			return sc.Skip("product " + product + " is not present in shopping cart to delete")
		}
		sc.Log.Info("Product " + product + " is present in Shopping Cart before deletion.")
		return nil
	})
	if err != nil {
		return err
	}
	err = sc.Step("Delete Product from Shopping Cart", func() error {
		return cart.DeleteProduct(ctx, product)
	})
	if err != nil {
		return err
	}
	return sc.Step("Verify Product is deleted from Shopping Cart", func() error {
		if cart.HasProduct(ctx, product) {
			return failed("product %s is still present in shopping cart after deletion", product)
		}
		sc.Log.Info("Product " + product + " is successfully deleted from Shopping Cart.")
		return nil
	})
}

func DeleteProductFromWishlist(ctx context.Context, sc *scenario.Context, a *uiactions.Actions) error {
	product := sc.Row.Get(FieldProduct)
	account := pages.NewMyAccountPage(a)
	wishlist := pages.NewWishlistPage(a)

	err := verifyLoggedIn(ctx, sc, account)
	if err != nil {
		return err
	}
	err = sc.Step("View Wish list before Deletion", func() error {
		err := account.GoToWishlist(ctx)
		if err != nil {
			return err
		}
		if !wishlist.VerifyHeading(ctx, "My Wish list") {
			return failed("wishlist heading does not read %q", "My Wish list")
		}
		if !wishlist.HasProduct(ctx, product) {
			return sc.Skip("product " + product + " is not present in wishlist to delete")
		}
		sc.Log.Info("Product " + product + " is present in Wishlist before deletion.")
		return nil
	})
	if err != nil {
		return err
	}
	err = sc.Step("Delete Product from Wish list", func() error {
		return wishlist.DeleteProduct(ctx, product)
	})
	if err != nil {
		return err
	}
	return sc.Step("Verify Product is deleted from Wish list", func() error {
		if wishlist.HasProduct(ctx, product) {
			return failed("product %s is still present in wishlist after deletion", product)
		}
		sc.Log.Info("Product " + product + " is successfully deleted from Wishlist.")
		return nil
	})
}

func ShoppingCartCheckout(ctx context.Context, sc *scenario.Context, a *uiactions.Actions) error {
	account := pages.NewMyAccountPage(a)
	cart := pages.NewShoppingCartPage(a)
	confirmation := pages.NewCheckoutConfirmationPage(a)

	err := verifyLoggedIn(ctx, sc, account)
	if err != nil {
		return err
	}
	err = viewCart(ctx, sc, account, cart, "proceed with checkout")
	if err != nil {
		return err
	}
	err = sc.Step("Proceed to Checkout Process", func() error {
		return cart.ProceedToCheckout(ctx)
	})
	if err != nil {
		return err
	}
	err = sc.Step("Verify Checkout Confirmation Page details", func() error {
		err := confirmation.VerifyHeading(ctx)
		if err != nil {
			return err
		}
		lines, err := confirmation.LineItemTotals(ctx)
		if err != nil {
			return err
		}
		displayed, err := confirmation.DisplayedTotal(ctx)
		if err != nil {
			return err
		}
		sc.Log.Info("Line items on Checkout Confirmation Page: " + strings.Join(lines, ", "))
		return totalStep(sc, lines, displayed)
	})
	if err != nil {
		return err
	}
	return sc.Step("Confirm the Order and Verify Order Success", func() error {
		err := confirmation.ConfirmOrder(ctx)
		if err != nil {
			return err
		}
		if !account.VerifyOrderSuccessMessage(ctx) {
			return failed("unable to process the order")
		}
		sc.Log.Info("Order processed successfully.")
		return nil
	})
}
