package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffdir/internal/validation"
)

func values() validation.EmployeeInput {
	return validation.EmployeeInput{
		AuthID: "user_1",
		Name:   "Al Jones",
		Email:  "al@example.com",
		Role:   "admin",
	}
}

type recorder struct {
	calls int
	got   validation.EmployeeInput
	err   error
}

func (r *recorder) submit(_ context.Context, v validation.EmployeeInput) error {
	r.calls++
	r.got = v
	return r.err
}

func fetchOf(v validation.EmployeeInput) FetchFunc {
	return func(context.Context) (validation.EmployeeInput, error) { return v, nil }
}

func TestCreate_SubmitSuccessReturnsToReferrer(t *testing.T) {
	c := NewCreate(validation.NewCreateSchema(), "/dashboard?page=2")
	rec := &recorder{}

	state := c.Submit(context.Background(), values(), rec.submit)

	assert.Equal(t, Succeeded, state)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "/dashboard?page=2", c.Redirect())
	assert.Equal(t, &Notice{Kind: NoticeSuccess, Message: "Employee created!"}, c.Notice())
}

func TestCreate_ReferrerFallbacks(t *testing.T) {
	for _, returnTo := range []string{"", "https://evil.example", "//evil.example", "/dashboard/create-employee"} {
		c := NewCreate(validation.NewCreateSchema(), returnTo)
		c.Submit(context.Background(), values(), (&recorder{}).submit)
		assert.Equal(t, "/dashboard", c.Redirect(), returnTo)
	}
}

func TestSubmit_ValidationNeverReachesStore(t *testing.T) {
	c := NewCreate(validation.NewCreateSchema(), "")
	rec := &recorder{}
	bad := values()
	bad.Name = "Al"

	state := c.Submit(context.Background(), bad, rec.submit)

	assert.Equal(t, Idle, state)
	assert.Zero(t, rec.calls)
	assert.Equal(t, "Minimum 3 characters.", c.FieldErrors()["name"])
	assert.Equal(t, bad, c.Values())
	assert.Empty(t, c.Redirect())
}

func TestSubmit_BackendFailureKeepsInput(t *testing.T) {
	c := NewCreate(validation.NewCreateSchema(), "")
	rec := &recorder{err: errors.New("failed to create employee: conflict")}
	in := values()

	state := c.Submit(context.Background(), in, rec.submit)

	assert.Equal(t, Failed, state)
	assert.Equal(t, "failed to create employee: conflict", c.BackendError())
	assert.Equal(t, NoticeError, c.Notice().Kind)
	assert.Equal(t, in, c.Values())
	assert.Empty(t, c.Redirect())
}

func TestSubmit_ClearsPreviousBackendError(t *testing.T) {
	c := NewCreate(validation.NewCreateSchema(), "")
	rec := &recorder{err: errors.New("boom")}
	c.Submit(context.Background(), values(), rec.submit)
	require.Equal(t, "boom", c.BackendError())

	rec.err = nil
	c.Submit(context.Background(), values(), rec.submit)

	assert.Empty(t, c.BackendError())
	assert.Equal(t, Succeeded, c.State())
}

func TestManage_UnchangedValuesSkipSubmit(t *testing.T) {
	c := NewManage(validation.NewManageSchema(false))
	require.NoError(t, c.Load(context.Background(), fetchOf(values())))
	rec := &recorder{}

	state := c.Submit(context.Background(), values(), rec.submit)

	assert.Equal(t, Succeeded, state)
	assert.Zero(t, rec.calls)
	assert.Equal(t, "/dashboard", c.Redirect())
	assert.Equal(t, &Notice{Kind: NoticeInfo, Message: "No values modified"}, c.Notice())
}

func TestManage_ChangedValuesSubmit(t *testing.T) {
	c := NewManage(validation.NewManageSchema(false))
	require.NoError(t, c.Load(context.Background(), fetchOf(values())))
	rec := &recorder{}
	changed := values()
	changed.Role = "developer"

	state := c.Submit(context.Background(), changed, rec.submit)

	assert.Equal(t, Succeeded, state)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "developer", rec.got.Role)
	assert.Equal(t, "/dashboard", c.Redirect())
	assert.Equal(t, "Employee managed!", c.Notice().Message)
}

func TestManage_ResetRequiresLoad(t *testing.T) {
	c := NewManage(validation.NewManageSchema(false))

	assert.ErrorIs(t, c.Reset(), ErrNotLoaded)
	assert.False(t, c.Loaded())
}

func TestManage_ResetRestoresDefaults(t *testing.T) {
	c := NewManage(validation.NewManageSchema(false))
	require.NoError(t, c.Load(context.Background(), fetchOf(values())))
	changed := values()
	changed.Name = "Someone Else"
	c.Submit(context.Background(), changed, (&recorder{err: errors.New("boom")}).submit)
	require.Equal(t, Failed, c.State())

	require.NoError(t, c.Reset())

	assert.Equal(t, values(), c.Values())
	assert.Empty(t, c.BackendError())
	assert.Nil(t, c.FieldErrors())
	assert.Equal(t, Idle, c.State())
}

func TestManage_LoadError(t *testing.T) {
	c := NewManage(validation.NewManageSchema(false))
	boom := errors.New("failed to fetch employee: employee not found")

	err := c.Load(context.Background(), func(context.Context) (validation.EmployeeInput, error) {
		return validation.EmployeeInput{}, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, c.Reset(), ErrNotLoaded)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "failed", Failed.String())
}
