package twin

import (
	"fmt"
	"html/template"
)

const layout = `{{define "layout"}}<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
.dropdown .sub_menu { display: none; }
.dropdown.open .sub_menu { display: block; }
.spacer { height: 1200px; }
</style>
</head>
<body>
<div id="header">
{{if .Username}}
	<ul class="nav topcart">
		<li><a href="/cart"><span class="label label-orange">{{.CartCount}}</span><span class="cart_total">{{money .CartTotal}}</span></a></li>
	</ul>
	<ul id="customer_menu_top">
		<li class="dropdown" onmouseenter="this.className='dropdown open'" onmouseleave="this.className='dropdown'">
			<div class="menu_text">Welcome back {{.Username}}</div>
			<ul class="sub_menu">
				<li><a href="/account">Account Dashboard</a></li>
				<li><a href="/wishlist">My wish list</a></li>
			</ul>
		</li>
	</ul>
	<ul id="main_menu">
		<li><a href="/account"><span class="menu_text">Account</span></a></li>
	</ul>
	<ul class="logout_menu">
		<li><a href="/account/logout"><span class="menu_text">Logout</span></a></li>
	</ul>
{{else}}
	<ul id="customer_menu_top">
		<li><a href="/account/login">Login or register</a></li>
	</ul>
{{end}}
</div>
<section id="categorymenu">
	<nav>
		<ul>
			<li><a href="/">Home</a></li>
			{{range .Categories}}
			<li>
				<a href="/category/{{(index .SubCategories 0).Slug}}">{{.Name}}</a>
				<ul>
					{{range .SubCategories}}<li><a href="/category/{{.Slug}}">{{.Name}}</a></li>{{end}}
				</ul>
			</li>
			{{end}}
		</ul>
	</nav>
</section>
<div id="maincontainer">
{{template "content" .Content}}
</div>
</body>
</html>{{end}}`

var pageSources = map[string]string{
	"home": `{{define "content"}}
<h2>Featured</h2>
<p>Browse the categories above.</p>
{{end}}`,

	"login": `{{define "content"}}
<h1 class="heading1"><span class="maintext">Account Login</span></h1>
{{if .Failed}}<div class="alert alert-error alert-danger">Error: Incorrect login or password provided.</div>{{end}}
<form id="loginFrm" method="post" action="/account/login">
	<input type="text" name="loginname" id="loginFrm_loginname">
	<input type="password" name="password" id="loginFrm_password">
	<button type="submit" title="Login" class="btn btn-orange">Login</button>
</form>
{{end}}`,

	"account": `{{define "content"}}
<h1 class="heading1"><span class="maintext">My Account</span></h1>
<p>Orders placed: {{.Orders}}</p>
{{end}}`,

	"logout": `{{define "content"}}
<h1 class="heading1"><span class="maintext">Account Logout</span></h1>
<p>You have been logged off your account.</p>
{{end}}`,

	"category": `{{define "content"}}
<h1 class="heading1"><span class="maintext">{{.Name}}</span></h1>
<div class="thumbnails grid row list-inline">
	{{range .Products}}
	<div class="col-md-3">
		<a class="prdocutname" href="/product/{{.ID}}">{{.Name}}</a>
		<div class="oneprice">{{money .Price}}</div>
	</div>
	{{end}}
</div>
{{end}}`,

	"product": `{{define "content"}}
<h1 class="productname"><span class="bgnone">{{.Product.Name}}</span></h1>
<div class="productfilneprice">{{money .Product.Price}}</div>
<div class="spacer"></div>
<form method="post" action="/product/{{.Product.ID}}/cart">
	<button type="submit" class="cart">Add to Cart</button>
</form>
{{if .InWishlist}}
<a class="wishlist_remove btn" href="/product/{{.Product.ID}}/wishlist/remove">Remove from wish list</a>
{{else}}
<a class="wishlist_add btn" href="/product/{{.Product.ID}}/wishlist/add">Add to wish list</a>
{{end}}
{{end}}`,

	"cart": `{{define "content"}}
<h1 class="heading1"><span class="maintext">Shopping Cart</span></h1>
<form id="cart" method="post" action="/cart">
	<div class="contentpanel">
		<div class="container-fluid cart-info product-list">
			<table class="table table-striped table-bordered">
				<tr><th>Image</th><th>Name</th><th>Model</th><th>Unit Price</th><th>Quantity</th><th>Total</th><th>Remove</th></tr>
				{{range .Lines}}
				<tr>
					<td></td>
					<td><a href="/product/{{.ID}}">{{.Name}}</a></td>
					<td>{{.ID}}</td>
					<td>{{money .Price}}</td>
					<td>{{.Qty}}</td>
					<td>{{money .Total}}</td>
					<td><a class="btn btn-sm" href="/cart/remove?cart&amp;remove={{.ID}}">x</a></td>
				</tr>
				{{end}}
			</table>
			{{if not .Lines}}<p>Your cart is empty.</p>{{end}}
		</div>
	</div>
</form>
{{template "totals" .}}
<a class="btn" href="/" title="">Continue Shopping</a>
<a class="btn btn-orange" id="cart_checkout2" href="/checkout">Checkout</a>
{{end}}`,

	"checkout": `{{define "content"}}
<h1 class="heading1"><span class="maintext">Checkout Confirmation</span></h1>
<table class="table confirm_products">
	{{range .Lines}}
	<tr>
		<td><a href="/product/{{.ID}}">{{.Name}}</a></td>
		<td>{{.Qty}} x {{money .Price}}</td>
		<td class="checkout_heading">{{money .Total}}</td>
	</tr>
	{{end}}
</table>
{{template "totals" .}}
<form method="post" action="/checkout/confirm">
	<button type="submit" id="checkout_btn" title="Confirm Order" class="btn btn-orange">Confirm Order</button>
</form>
{{end}}`,

	"success": `{{define "content"}}
<h1 class="heading1"><span class="maintext">Your Order Has Been Processed!</span></h1>
<p>Order number {{.Orders}}.</p>
{{end}}`,

	"wishlist": `{{define "content"}}
<h1 class="heading1"><span class="maintext">My wish list</span></h1>
<div class="wishlist">
	<table class="table table-striped">
		{{range .Products}}
		<tr>
			<td><a href="/product/{{.ID}}">{{.Name}}</a></td>
			<td>{{money .Price}}</td>
			<td><a class="btn btn-sm btn-default btn-remove" href="/wishlist/remove?product={{.ID}}">Remove</a></td>
		</tr>
		{{end}}
	</table>
</div>
{{end}}`,
}

const totals = `{{define "totals"}}
<div class="cart-totals">
	<table id="totals_table" class="table">
		<tr><td>Sub-Total:</td><td>{{money .Subtotal}}</td></tr>
		<tr><td>Flat Shipping Rate:</td><td>{{money .Shipping}}</td></tr>
		<tr><td><span class="bold">Total:</span></td><td><span class="bold totalamout">{{money .Total}}</span></td></tr>
	</table>
</div>
{{end}}`

func money(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func parseTemplates() map[string]*template.Template {
	base := template.Must(template.New("layout").Funcs(template.FuncMap{"money": money}).Parse(layout + totals))
	templates := make(map[string]*template.Template, len(pageSources))
	for name, src := range pageSources {
		templates[name] = template.Must(template.Must(base.Clone()).Parse(src))
	}
	return templates
}
