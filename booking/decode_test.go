package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		ids     []int
		hasMore bool
		meta    bool
	}{
		{name: "data array", body: `{"data":[{"id":1},{"id":2}]}`, ids: []int{1, 2}},
		{name: "data array with meta", body: `{"data":[{"id":1}],"meta":{"current_page":1,"last_page":4}}`, ids: []int{1}, meta: true, hasMore: true},
		{name: "nested paginator", body: `{"data":{"data":[{"id":3}],"current_page":2,"last_page":2}}`, ids: []int{3}, meta: true},
		{name: "empty paginator", body: `{"data":{"data":null,"current_page":1,"last_page":1}}`, ids: []int{}, meta: true},
		{name: "no data", body: `{}`, ids: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodePage[Event]([]byte(tt.body))
			require.NoError(t, err)

			ids := make([]int, 0, len(page.Data))
			for _, e := range page.Data {
				ids = append(ids, e.ID)
			}
			require.Equal(t, tt.ids, ids)
			require.Equal(t, tt.meta, page.Meta != nil)
			require.Equal(t, tt.hasMore, page.Meta.HasMore())
		})
	}

	_, err := decodePage[Event]([]byte(`not json`))
	require.Error(t, err)
}

func TestDecodeItem(t *testing.T) {
	wrapped, err := decodeItem[User]([]byte(`{"data":{"id":42,"name":"Ada"}}`))
	require.NoError(t, err)
	require.Equal(t, User{ID: 42, Name: "Ada"}, wrapped)

	bare, err := decodeItem[User]([]byte(`{"id":42,"name":"Ada"}`))
	require.NoError(t, err)
	require.Equal(t, wrapped, bare)

	_, err = decodeItem[User]([]byte(`[]`))
	require.Error(t, err)
}

func TestAuthResponse_TokenValue(t *testing.T) {
	require.Equal(t, "a", AuthResponse{Token: "a", AccessToken: "b"}.TokenValue())
	require.Equal(t, "b", AuthResponse{AccessToken: "b"}.TokenValue())

	nested := AuthResponse{Data: &AuthData{AccessToken: "c"}}
	require.Equal(t, "c", nested.TokenValue())
	require.Empty(t, AuthResponse{}.TokenValue())
}

func TestAuthResponse_Account(t *testing.T) {
	require.Equal(t, "Ada", AuthResponse{User: &User{Name: "Ada"}}.Account().Name)
	require.Equal(t, "Bob", AuthResponse{Data: &AuthData{User: &User{Name: "Bob"}}}.Account().Name)
	require.Equal(t, User{}, AuthResponse{Data: &AuthData{}}.Account())
}

func TestKeys(t *testing.T) {
	require.True(t, KeyEvents(0).Equal(KeyEvents(1)))
	require.True(t, KeyBookings(3).HasPrefix(KeyBookings(3)))
	require.False(t, KeyEvent(7).HasPrefix(KeyEvents(1)))
}
