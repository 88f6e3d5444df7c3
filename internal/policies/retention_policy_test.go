package policies

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetentionPolicyMatches(t *testing.T) {
	policy, err := NewRetentionPolicy([]string{"Alamofire", " Firebase* ", "Realm:*", "Swift:Collections"})
	require.NoError(t, err)

	cases := []struct {
		pkg  string
		name string
		want bool
	}{
		{pkg: "Alamofire", name: "Alamofire", want: true},
		{pkg: "Other", name: "Alamofire", want: true},
		{pkg: "Firebase", name: "FirebaseAuth", want: true},
		{pkg: "Realm", name: "RealmSwift", want: true},
		{pkg: "Swift", name: "Collections", want: true},
		{pkg: "Other", name: "Collections", want: false},
		{pkg: "Kingfisher", name: "Kingfisher", want: false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, policy.Retains(tc.pkg, tc.name), "%s:%s", tc.pkg, tc.name)
	}
	if diff := cmp.Diff([]string{"Alamofire", "Firebase*", "Realm:*", "Swift:Collections"}, policy.Patterns); diff != "" {
		t.Fatalf("unexpected patterns (-want +got):\n%s", diff)
	}
}

func TestRetentionPolicyWildcard(t *testing.T) {
	policy, err := NewRetentionPolicy([]string{"*"})
	require.NoError(t, err)
	assert.True(t, policy.Retains("Any", "Thing"))
	assert.False(t, policy.Empty())
}

func TestRetentionPolicyEmpty(t *testing.T) {
	policy, err := NewRetentionPolicy(nil)
	require.NoError(t, err)
	assert.True(t, policy.Empty())
	assert.False(t, policy.Retains("Any", "Thing"))
}

func TestRetentionPolicyRejectsInvalidPatterns(t *testing.T) {
	for _, pattern := range []string{"", "a:b:c", ":Name", "Fire*base", "**"} {
		_, err := NewRetentionPolicy([]string{pattern})
		require.Error(t, err, "pattern %q", pattern)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	}
}
