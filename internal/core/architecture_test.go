package core

import (
	"testing"

	"stockcore/testutil"
)

func TestCoreDoesNotImportBackends(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InfraImportForbidden, "core depends on domain.DocumentStore only")
	testutil.AssertNoDirectImports(t, ".", testutil.AdapterImportForbidden, "core must not know about transports")
}
