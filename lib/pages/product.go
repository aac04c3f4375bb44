package pages

import (
	"context"

	"storefront-e2e/lib/uiactions"

	"github.com/playwright-community/playwright-go"
)

type ProductSelectionPage struct {
	actions *uiactions.Actions
}

func NewProductSelectionPage(a *uiactions.Actions) *ProductSelectionPage {
	return &ProductSelectionPage{actions: a}
}

func (p *ProductSelectionPage) heading(subCategory string) playwright.Locator {
	return p.actions.Page.Locator("//span[contains(text()," + xpathLiteral(subCategory) + ")]")
}

func (p *ProductSelectionPage) productLink(product string) playwright.Locator {
	return p.actions.Page.Locator("//div[contains(@class,'list-inline')]//child::a[contains(text()," + xpathLiteral(product) + ")]")
}

func (p *ProductSelectionPage) VerifySubCategoryHeading(ctx context.Context, subCategory string) error {
	visible := p.actions.VerifyVisibility(ctx, p.heading(subCategory), "Product Sub Category Heading: "+subCategory)
	screenshot(ctx, p.actions, "Product Sub Category Heading")
	if !visible {
		return postCondition("sub category heading %q is not visible", subCategory)
	}
	return nil
}

func (p *ProductSelectionPage) SelectProduct(ctx context.Context, product string) error {
	link := p.productLink(product)
	err := p.actions.ScrollTo(ctx, link, "Product Link: "+product)
	if err != nil {
		return err
	}
	return p.actions.Click(ctx, link, "Product Link: "+product)
}

type ProductDetailsPage struct {
	actions            *uiactions.Actions
	addToCartButton    playwright.Locator
	addToWishlistLink  playwright.Locator
	removeFromWishlist playwright.Locator
	wishlist           *wishlistMenu
}

func NewProductDetailsPage(a *uiactions.Actions) *ProductDetailsPage {
	page := a.Page
	return &ProductDetailsPage{
		actions:            a,
		addToCartButton:    page.GetByText("Add to Cart"),
		addToWishlistLink:  page.Locator("//a[contains(@class,'wishlist_add')]"),
		removeFromWishlist: page.Locator("//a[contains(@class,'wishlist_remove')]"),
		wishlist:           newWishlistMenu(a),
	}
}

func (p *ProductDetailsPage) VerifyProductHeading(ctx context.Context, product string) error {
	header := p.actions.Page.Locator("//span[contains(text()," + xpathLiteral(product) + ")]")
	if !p.actions.VerifyVisibility(ctx, header, "Product Name Header: "+product) {
		return postCondition("product heading %q is not visible", product)
	}
	return nil
}

func (p *ProductDetailsPage) AddToCart(ctx context.Context) error {
	err := p.actions.ScrollTo(ctx, p.addToCartButton, "Add To Cart Button")
	if err != nil {
		return err
	}
	return p.actions.Click(ctx, p.addToCartButton, "Add To Cart Button")
}

func (p *ProductDetailsPage) AddToWishlist(ctx context.Context) error {
	err := p.actions.ScrollTo(ctx, p.addToWishlistLink, "Add To Wishlist Link")
	if err != nil {
		return err
	}
	return p.actions.Click(ctx, p.addToWishlistLink, "Add To Wishlist Link")
}

// IsRemoveFromWishlistVisible reports whether the product is already in the
// wishlist.
func (p *ProductDetailsPage) IsRemoveFromWishlistVisible(ctx context.Context) (bool, error) {
	err := p.actions.ScrollTo(ctx, p.addToCartButton, "Add To Cart Button")
	if err != nil {
		return false, err
	}
	visible := p.actions.VerifyVisibility(ctx, p.removeFromWishlist, "Remove From Wishlist Link")
	screenshot(ctx, p.actions, "Remove From Wishlist Link Visibility")
	return visible, nil
}

func (p *ProductDetailsPage) GoToWishlist(ctx context.Context) error {
	return p.wishlist.open(ctx)
}
