// MCP transport for the storefront using the official MCP Go SDK.
// Exposes catalog, cart and checkout operations as MCP tools so shopping
// assistants can browse and build carts without the REST client.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"voyage-bff/internal/model"
)

// === MCP Tool Input/Output Types ===

// ListProductsInput is the input schema for list_products.
type ListProductsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of products (default 50)"`
}

// GetProductInput is the input schema for get_product.
type GetProductInput struct {
	ID string `json:"id" jsonschema:"product ID,required"`
}

// SearchProductsInput is the input schema for search_products.
type SearchProductsInput struct {
	Query string `json:"query" jsonschema:"text matched against product titles,required"`
}

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}

// GetCartInput is the input schema for get_cart.
type GetCartInput struct {
	CartID string `json:"cart_id" jsonschema:"cart ID returned by add_to_cart,required"`
}

// AddToCartInput is the input schema for add_to_cart.
// An empty cart_id starts a new cart.
type AddToCartInput struct {
	CartID     string         `json:"cart_id,omitempty" jsonschema:"existing cart ID"`
	VariantID  string         `json:"variant_id" jsonschema:"product variant ID,required"`
	Quantity   int            `json:"quantity" jsonschema:"quantity to add,required"`
	Properties map[string]any `json:"properties,omitempty" jsonschema:"line item properties such as lens selection"`
}

// CreateCheckoutInput is the input schema for create_checkout.
type CreateCheckoutInput struct {
	CartID string `json:"cart_id" jsonschema:"cart ID,required"`
}

// ProductsOutput wraps product lists; tool results must be objects.
type ProductsOutput struct {
	Products []model.Product `json:"products"`
}

// CollectionsOutput wraps the collection list.
type CollectionsOutput struct {
	Collections []model.Collection `json:"collections"`
}

// NewMCPServer creates an MCP server with storefront tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "voyage-bff",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Voyage eyewear storefront. Browse frames and lenses, " +
				"build a cart, and hand it off to checkout.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_products",
		Description: "List storefront products.",
	}, h.mcpListProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_product",
		Description: "Get a single product with its variants.",
	}, h.mcpGetProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_products",
		Description: "Search products by title.",
	}, h.mcpSearchProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List all product collections.",
	}, h.mcpListCollections)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_lens_options",
		Description: "List lens products grouped into anti-glare, blue-block and colour categories.",
	}, h.mcpLensOptions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_cart",
		Description: "Get the contents of a cart.",
	}, h.mcpGetCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_to_cart",
		Description: "Add a variant to a cart. Omit cart_id to start a new cart.",
	}, h.mcpAddToCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_checkout",
		Description: "Create a checkout URL for a cart.",
	}, h.mcpCreateCheckout)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpListProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListProductsInput,
) (*mcp.CallToolResult, *ProductsOutput, error) {
	products, err := h.catalog.ListProducts(ctx, input.Limit)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &ProductsOutput{Products: nonNil(products)}, nil
}

func (h *Handler) mcpGetProduct(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetProductInput,
) (*mcp.CallToolResult, *model.Product, error) {
	if input.ID == "" {
		return nil, nil, fmt.Errorf("id is required")
	}

	product, err := h.catalog.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, product, nil
}

func (h *Handler) mcpSearchProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchProductsInput,
) (*mcp.CallToolResult, *ProductsOutput, error) {
	results, err := h.catalog.SearchProducts(ctx, input.Query)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &ProductsOutput{Products: nonNil(results)}, nil
}

func (h *Handler) mcpListCollections(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, *CollectionsOutput, error) {
	collections, err := h.catalog.ListCollections(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	return nil, &CollectionsOutput{Collections: collections}, nil
}

func (h *Handler) mcpLensOptions(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, *model.LensOptions, error) {
	opts, err := h.catalog.LensOptions(ctx)
	if err != nil || opts == nil {
		empty := model.NewLensOptions()
		return nil, &empty, nil
	}
	return nil, opts, nil
}

func (h *Handler) mcpGetCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetCartInput,
) (*mcp.CallToolResult, *model.Cart, error) {
	if input.CartID == "" {
		return nil, nil, fmt.Errorf("cart_id is required")
	}

	c, err := h.carts.GetCart(ctx, input.CartID)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, c, nil
}

func (h *Handler) mcpAddToCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AddToCartInput,
) (*mcp.CallToolResult, *model.Cart, error) {
	quantity := input.Quantity
	c, err := h.carts.AddItem(ctx, input.CartID, model.ItemInput{
		VariantID:  input.VariantID,
		Quantity:   &quantity,
		Properties: input.Properties,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, c, nil
}

func (h *Handler) mcpCreateCheckout(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CreateCheckoutInput,
) (*mcp.CallToolResult, *model.CheckoutSession, error) {
	session, err := h.checkout.CreateCheckout(ctx, input.CartID)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, session, nil
}

// mcpError converts domain errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
