package hubspot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key",
		WithBaseURL(srv.URL),
		WithWriteLimit(1000),
		WithPageSize(2),
	)
}

func TestListAll_FollowsPaging(t *testing.T) {
	var afters []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		after := r.URL.Query().Get("after")
		afters = append(afters, after)

		switch after {
		case "":
			_, _ = io.WriteString(w, `{
				"results": [
					{"id": "1", "properties": {"firstname": "A"}},
					{"id": "2", "properties": {"firstname": "B"}}
				],
				"paging": {"next": {"after": "cursor-2"}}
			}`)
		case "cursor-2":
			_, _ = io.WriteString(w, `{
				"results": [{"id": "3", "properties": {"firstname": "C"}}]
			}`)
		default:
			t.Fatalf("unexpected after cursor %q", after)
		}
	})

	c := newTestClient(t, handler)
	records, err := c.ListAll(context.Background(), ObjectTypeContacts, []string{"firstname"})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "cursor-2"}, afters)
	require.Len(t, records, 3)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "C", records[2].Get("firstname"))
}

func TestUpdate_SendsPropertiesPayload(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{"id": "42"}`)
	})

	c := newTestClient(t, handler)
	err := c.Update(context.Background(), ObjectTypeContacts, "42", map[string]string{"jobtitle": "VP"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/crm/v3/objects/contacts/42", gotPath)
	assert.Equal(t, "VP", gotBody["properties"]["jobtitle"])
}

func TestCreate_ReturnsAssignedID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": "901", "properties": {"firstname": "New"}}`)
	})

	c := newTestClient(t, handler)
	rec, err := c.Create(context.Background(), ObjectTypeContacts, map[string]string{"firstname": "New"})
	require.NoError(t, err)
	assert.Equal(t, "901", rec.ID)
}

func TestDo_RetriesOn429(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"results": []}`)
	})

	c := newTestClient(t, handler)
	_, err := c.ListAll(context.Background(), ObjectTypeContacts, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestIsConflict(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message": "contact already exists"}`)
	})

	c := newTestClient(t, handler)
	err := c.Update(context.Background(), ObjectTypeContacts, "7", map[string]string{"email": "dup@x.com"})
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	assert.False(t, IsConflict(nil))
}

func TestSearch_SendsFilterGroups(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{
			"results": [{"id": "5", "properties": {"city": "Orlando"}}]
		}`)
	})

	c := newTestClient(t, handler)
	records, err := c.Search(context.Background(), ObjectTypeContacts, SearchQuery{
		Filters:    []SearchFilter{{Property: "city", Operator: "EQ", Value: "Orlando"}},
		Properties: []string{"firstname", "city"},
		Limit:      100,
	})
	require.NoError(t, err)

	assert.Equal(t, "/crm/v3/objects/contacts/search", gotPath)
	assert.Equal(t, float64(100), gotBody["limit"])
	groups := gotBody["filterGroups"].([]any)
	require.Len(t, groups, 1)
	filter := groups[0].(map[string]any)["filters"].([]any)[0].(map[string]any)
	assert.Equal(t, "city", filter["propertyName"])
	assert.Equal(t, "EQ", filter["operator"])
	assert.Equal(t, "Orlando", filter["value"])

	require.Len(t, records, 1)
	assert.Equal(t, "Orlando", records[0].Get("city"))
}

func TestAssociations_ReturnsIDs(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"results": [{"id": "11", "type": "company_to_contact"}, {"id": "12"}]}`)
	})

	c := newTestClient(t, handler)
	ids, err := c.Associations(context.Background(), "companies", "9", ObjectTypeContacts)
	require.NoError(t, err)

	assert.Equal(t, "/crm/v3/objects/companies/9/associations/contacts", gotPath)
	assert.Equal(t, []string{"11", "12"}, ids)
}

func TestAssociate_PutsLabeledLink(t *testing.T) {
	var gotMethod, gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{}`)
	})

	c := newTestClient(t, handler)
	err := c.Associate(context.Background(), "tasks", "77", ObjectTypeContacts, "5", "task_to_contact")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/crm/v3/objects/tasks/77/associations/contacts/5/task_to_contact", gotPath)
}

func TestGet_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := newTestClient(t, handler)
	_, err := c.Get(context.Background(), ObjectTypeContacts, "missing", nil)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
