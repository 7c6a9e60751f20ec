package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/testutil"
)

func userIDs(t *testing.T, app *testApp, token, path string) []string {
	t.Helper()
	rec := app.do(newAuthRequest(http.MethodGet, path, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var users []user.User
	unmarshall(t, rec, &users)
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func Test_userApi(t *testing.T) {
	app := setup(t)
	owner := testutil.CreateUser(t, app.db, app.tenant.ID, "olga", user.RoleAdminOwner)
	manager := testutil.CreateUser(t, app.db, app.tenant.ID, "mike", user.RoleAdminManager)
	staff := testutil.CreateUser(t, app.db, app.tenant.ID, "sam", user.RoleAdmin)
	customer := testutil.CreateUser(t, app.db, app.tenant.ID, "carl")
	managerToken, staffToken := getToken(t, manager), getToken(t, staff)

	tests := []httpTest{
		{
			name:     "roles",
			method:   http.MethodGet,
			path:     "/v1/admin/users/roles",
			token:    staffToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, user.Roles),
		},
		{
			name:     "staff cannot manage users",
			method:   http.MethodPut,
			path:     "/v1/admin/users/" + customer.ID + "/roles",
			body:     marshallObj(t, user.SetRoles{Roles: []string{user.RoleAdmin}}),
			token:    staffToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "role above the actor's",
			method:   http.MethodPut,
			path:     "/v1/admin/users/" + customer.ID + "/roles",
			body:     marshallObj(t, user.SetRoles{Roles: []string{user.RoleAdminOwner}}),
			token:    managerToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"roles": user.ErrRoleTooHigh.Error()}),
		},
		{
			name:     "user ranking above the actor",
			method:   http.MethodPut,
			path:     "/v1/admin/users/" + owner.ID + "/active",
			body:     []byte(`{"is_active": false}`),
			token:    managerToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"roles": user.ErrRoleTooHigh.Error()}),
		},
		{
			name:     "self",
			method:   http.MethodPut,
			path:     "/v1/admin/users/" + manager.ID + "/roles",
			body:     marshallObj(t, user.SetRoles{Roles: []string{user.RoleAdmin}}),
			token:    managerToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: user.ErrSelfDemotion.Error()}),
		},
		{
			name:     "unknown role",
			method:   http.MethodPut,
			path:     "/v1/admin/users/" + customer.ID + "/roles",
			body:     []byte(`{"roles": ["wizard"]}`),
			token:    managerToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "status is required",
			method:   http.MethodPut,
			path:     "/v1/admin/users/" + customer.ID + "/active",
			body:     []byte(`{}`),
			token:    managerToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"is_active": "this field is required"}),
		},
		{
			name:     "unknown user",
			method:   http.MethodPut,
			path:     "/v1/admin/users/nope/roles",
			body:     marshallObj(t, user.SetRoles{Roles: []string{user.RoleAdmin}}),
			token:    managerToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: user.ErrNotFound.Error()}),
		},
		{
			name:     "invalid is_active filter",
			method:   http.MethodGet,
			path:     "/v1/admin/users?is_active=sometimes",
			token:    staffToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"is_active": errInvalidBool.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.run(t, tt)
		})
	}

	t.Run("list", func(t *testing.T) {
		assert.Equal(t, []string{customer.ID, manager.ID, owner.ID, staff.ID},
			userIDs(t, app, staffToken, "/v1/admin/users"))
		assert.ElementsMatch(t, []string{owner.ID, manager.ID, staff.ID},
			userIDs(t, app, staffToken, "/v1/admin/users?role=admin:"))
		assert.Equal(t, []string{customer.ID}, userIDs(t, app, staffToken, "/v1/admin/users?search=carl"))
	})

	t.Run("promote", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPut, "/v1/admin/users/"+customer.ID+"/roles", managerToken,
			marshallObj(t, user.SetRoles{Roles: []string{user.RoleAdmin}})))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var usr user.User
		unmarshall(t, rec, &usr)
		assert.Equal(t, []string{user.RoleAdmin}, usr.Roles)

		// the back-office owns roles: the token's roles no longer matter
		rec = app.do(newAuthRequest(http.MethodGet, "/v1/admin/dashboard", getToken(t, customer)))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("deactivate", func(t *testing.T) {
		rec := app.do(newAuthRequest(http.MethodPut, "/v1/admin/users/"+staff.ID+"/active", managerToken,
			[]byte(`{"is_active": false}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var usr user.User
		unmarshall(t, rec, &usr)
		assert.False(t, usr.IsActive)

		assert.Equal(t, []string{staff.ID}, userIDs(t, app, managerToken, "/v1/admin/users?is_active=false"))

		rec = app.do(newAuthRequest(http.MethodGet, "/v1/me", staffToken))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "account deactivated"}),
		}, rec)
	})
}
