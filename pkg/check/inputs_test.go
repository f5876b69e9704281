package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestInputsFromYAML(t *testing.T) {
	var in Inputs
	src := `
number: 3
vrf: BLUE
tags: [a, b]
hosts:
  - destination: 10.0.0.1
    source: Management1
    vrf: MGMT
`
	if err := yaml.Unmarshal([]byte(src), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	n, ok := in.Int("number")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	assert.Equal(t, "BLUE", in.StringDefault("vrf", "default"))
	assert.Equal(t, "default", in.StringDefault("missing", "default"))

	tags, ok := in.Strings("tags")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags)

	hosts, ok := in.List("hosts")
	assert.True(t, ok)
	assert.Len(t, hosts, 1)
	assert.Equal(t, "MGMT", hosts[0]["vrf"])
}

func TestInputsWrongTypes(t *testing.T) {
	in := Inputs{"number": "three", "ratio": 1.5, "tags": []any{"a", 1}, "hosts": []any{"x"}}

	_, ok := in.Int("number")
	assert.False(t, ok)
	_, ok = in.Int("ratio")
	assert.False(t, ok)
	_, ok = in.Strings("tags")
	assert.False(t, ok)
	_, ok = in.List("hosts")
	assert.False(t, ok)
	_, ok = in.String("absent")
	assert.False(t, ok)
}

func TestInputsHas(t *testing.T) {
	in := Inputs{"zero": 0, "empty": "", "none": nil, "n": 2, "list": []any{}}
	for _, k := range []string{"zero", "empty", "none", "list", "absent"} {
		assert.False(t, in.Has(k), k)
	}
	assert.True(t, in.Has("n"))
}

func TestInputsFloatFromJSON(t *testing.T) {
	in := Inputs{"number": float64(4)}
	n, ok := in.Int("number")
	assert.True(t, ok)
	assert.Equal(t, 4, n)
}

func TestInputsCloneIsIndependent(t *testing.T) {
	in := Inputs{"vrf": "default"}
	c := in.Clone()
	c["vrf"] = "RED"
	assert.Equal(t, "default", in["vrf"])

	var nilIn Inputs
	assert.NotNil(t, nilIn.Clone())
}
