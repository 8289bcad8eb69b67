package flowdi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/testutil"
)

func TestExportToDig(t *testing.T) {
	t.Parallel()

	var counter testutil.Counter
	c := newContainer(t)
	require.NoError(t, c.Register("services.main", counter.Fresh()))

	dc := dig.New()
	require.NoError(t, flowdi.ExportToDig[*testutil.TestService](dc, c, "services.main"))
	assert.Equal(t, 0, counter.Calls(), "export is lazy")

	type params struct {
		dig.In
		Svc *testutil.TestService `name:"services.main"`
	}

	var got *testutil.TestService
	require.NoError(t, dc.Invoke(func(p params) { got = p.Svc }))

	assert.Same(t, testutil.AssertResolvable[*testutil.TestService](t, c, "services.main"), got)
	assert.Equal(t, 1, counter.Calls())

	t.Run("missing key", func(t *testing.T) {
		err := flowdi.ExportToDig[string](dig.New(), c, "nope")
		assert.True(t, flowdi.IsNotFound(err))
	})

	t.Run("type mismatch surfaces on invoke", func(t *testing.T) {
		dc := dig.New()
		require.NoError(t, flowdi.ExportToDig[string](dc, c, "services.main"))

		type strParams struct {
			dig.In
			S string `name:"services.main"`
		}
		err := dc.Invoke(func(strParams) {})
		require.Error(t, err)

		var tErr *flowdi.TypeMismatchError
		assert.ErrorAs(t, dig.RootCause(err), &tErr)
	})
}

func TestImportFromDig(t *testing.T) {
	t.Parallel()

	dc := dig.New()
	require.NoError(t, dc.Provide(func() *testutil.TestLogger { return &testutil.TestLogger{} }))

	c := newContainer(t)
	require.NoError(t, flowdi.ImportFromDig[*testutil.TestLogger](c, dc, "logger"))

	testutil.AssertSameInstance(t, c, "logger", "logger")

	t.Run("missing dig type", func(t *testing.T) {
		c := newContainer(t)
		require.NoError(t, flowdi.ImportFromDig[*testutil.TestDatabase](c, dig.New(), "database"))

		_, err := c.Resolve("database")
		var fErr *flowdi.FactoryError
		require.ErrorAs(t, err, &fErr)
		assert.Contains(t, err.Error(), `import "database" from dig`)
	})
}
