package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uiagate/internal/uia"
)

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind         Kind
		coalesceable bool
	}{
		{KindAutomationEvent, true},
		{KindPropertyChanged, true},
		{KindFocusChanged, false},
		{KindNotification, false},
		{KindActiveTextPositionChanged, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.coalesceable, tt.kind.Coalesceable(), "%v coalesceable", tt.kind)
		assert.Equal(t, !tt.coalesceable, tt.kind.ForceFlush(), "%v force flush", tt.kind)
	}
}

func TestPackKeyRoundTrip(t *testing.T) {
	ids := []int32{1, -2, 3, 2147483647, -2147483648}
	key := packKey(ids)
	require.Len(t, string(key), 4*len(ids))
	assert.Equal(t, ids, unpackKey(key))
}

func TestAutomationKeyLayout(t *testing.T) {
	el := uia.NewSimpleElement("el", 1, 2, 3)
	r := newAutomationRecord(el, uia.EventLayoutInvalidated)

	require.Equal(t, KindAutomationEvent, r.kind)
	assert.Equal(t, uint32(1), r.count)
	assert.Equal(t, []int32{1, 2, 3, int32(uia.EventLayoutInvalidated)}, unpackKey(r.key))
}

func TestPropertyChangedKeyCarriesSentinel(t *testing.T) {
	el := uia.NewSimpleElement("el", 4, 5, 6)
	r := newPropertyChangedRecord(el, uia.PropertyName, uia.StringVariant("hi"))

	require.Equal(t, KindPropertyChanged, r.kind)
	assert.Equal(t,
		[]int32{4, 5, 6, int32(uia.EventPropertyChanged), int32(uia.PropertyName)},
		unpackKey(r.key))
	assert.Equal(t, "hi", r.value.Str())
}

func TestDegradedKeys(t *testing.T) {
	anon := uia.NewSimpleElement("anon")

	auto := newAutomationRecord(anon, uia.EventTextChanged)
	assert.Equal(t, []int32{int32(uia.EventTextChanged)}, unpackKey(auto.key),
		"automation key degrades to the event id alone")

	prop := newPropertyChangedRecord(anon, uia.PropertyValue, uia.Int32Variant(1))
	assert.Equal(t,
		[]int32{int32(uia.EventPropertyChanged), int32(uia.PropertyValue)},
		unpackKey(prop.key),
		"property key degrades to sentinel plus property id")
}

func TestNonCoalesceableRecordsHaveNoKey(t *testing.T) {
	el := uia.NewSimpleElement("el", 7)

	focus := newFocusChangedRecord(el)
	assert.Empty(t, string(focus.key))

	note := newNotificationRecord(el, uia.NotificationKindOther, uia.NotificationProcessingAll, "d", "a")
	assert.Empty(t, string(note.key))
	assert.Equal(t, "d", note.displayString)
	assert.Equal(t, "a", note.activityID)

	pos := newActiveTextPositionChangedRecord(el, &uia.SimpleTextRange{Start: 2, End: 4})
	assert.Empty(t, string(pos.key))
	require.NotNil(t, pos.textRange)
}

func TestKeyDistinguishesElements(t *testing.T) {
	a := newAutomationRecord(uia.NewSimpleElement("a", 1, 2), uia.EventTextChanged)
	b := newAutomationRecord(uia.NewSimpleElement("b", 1, 3), uia.EventTextChanged)
	c := newAutomationRecord(uia.NewSimpleElement("c", 1, 2), uia.EventTextChanged)

	assert.NotEqual(t, a.key, b.key)
	assert.Equal(t, a.key, c.key, "same runtime id and event id must share a key")
}
