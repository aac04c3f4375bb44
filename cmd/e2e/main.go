package main

import (
	"context"

	"storefront-e2e/cmd/e2e/cmd"
	"storefront-e2e/lib/osutil"
)

func main() {
	ctx, cancel := osutil.SignalContext(context.Background())
	defer cancel()
	cmd.ExecuteContext(ctx)
}
