package events

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOn_ExactDelivery(t *testing.T) {
	bus := New()

	var got []any
	bus.On("basket:changed", func(payload any) {
		got = append(got, payload)
	})

	bus.Emit("basket:changed", 42)
	bus.Emit("catalog:loaded", "ignored")

	require.Len(t, got, 1)
	assert.Equal(t, 42, got[0])
}

func TestOn_DuplicateRegistrationIsIdempotent(t *testing.T) {
	bus := New()

	calls := 0
	handler := func(payload any) { calls++ }

	// один и тот же обработчик на один и тот же ключ — хранится множеством
	bus.On("ping", handler)
	bus.On("ping", handler)

	bus.Emit("ping", nil)
	assert.Equal(t, 1, calls)
}

func TestOnAll_ReceivesEmitterEvent(t *testing.T) {
	bus := New()

	var got []EmitterEvent
	bus.OnAll(func(payload any) {
		event, ok := payload.(EmitterEvent)
		require.True(t, ok, "wildcard-подписчик должен получать EmitterEvent")
		got = append(got, event)
	})

	bus.Emit("foo", 1)

	require.Len(t, got, 1)
	assert.Equal(t, "foo", got[0].Name)
	assert.Equal(t, 1, got[0].Payload)
}

func TestOn_WildcardNameIsSameAsOnAll(t *testing.T) {
	bus := New()

	calls := 0
	bus.On(Wildcard, func(payload any) {
		_, ok := payload.(EmitterEvent)
		require.True(t, ok)
		calls++
	})

	bus.Emit("anything", nil)
	assert.Equal(t, 1, calls)
}

func TestOnPattern_MatchesByRegexp(t *testing.T) {
	bus := New()

	var names []string
	bus.OnPattern(regexp.MustCompile(`^basket:`), func(payload any) {
		names = append(names, payload.(string))
	})

	bus.Emit("basket:changed", "a")
	bus.Emit("order:success", "b")
	bus.Emit("basket:cleared", "c")

	assert.Equal(t, []string{"a", "c"}, names)
}

func TestEmit_HandlerMatchedByExactAndPatternCalledOnce(t *testing.T) {
	bus := New()

	calls := 0
	handler := func(payload any) { calls++ }

	bus.On("basket:changed", handler)
	bus.OnPattern(regexp.MustCompile(`^basket:`), handler)

	bus.Emit("basket:changed", nil)

	// обработчик совпал по двум правилам, но вызывается один раз за публикацию
	assert.Equal(t, 1, calls)
}

func TestEmit_ExactAndWildcardAreSeparateDeliveries(t *testing.T) {
	bus := New()

	exact := 0
	wild := 0
	handler := func(payload any) {
		if _, ok := payload.(EmitterEvent); ok {
			wild++
			return
		}
		exact++
	}

	bus.On("foo", handler)
	bus.OnAll(handler)

	bus.Emit("foo", "data")

	// форма полезной нагрузки разная, поэтому доставки считаются раздельно
	assert.Equal(t, 1, exact)
	assert.Equal(t, 1, wild)
}

func TestOff_RemovesHandlerAndDropsEmptyKey(t *testing.T) {
	bus := New()

	calls := 0
	handler := func(payload any) { calls++ }

	bus.On("ping", handler)
	bus.Off("ping", handler)
	bus.Emit("ping", nil)
	assert.Equal(t, 0, calls)

	bus.mu.Lock()
	assert.Empty(t, bus.handlers, "пустая запись ключа должна удаляться целиком")
	bus.mu.Unlock()

	// снятие незарегистрированного обработчика — no-op
	bus.Off("ping", handler)
	bus.Off("missing", handler)
}

func TestOffPattern_DropsCompiledPattern(t *testing.T) {
	bus := New()

	re := regexp.MustCompile(`^order:`)
	handler := func(payload any) {}

	bus.OnPattern(re, handler)
	bus.OffPattern(re, handler)

	bus.mu.Lock()
	assert.Empty(t, bus.handlers)
	assert.Empty(t, bus.patterns)
	bus.mu.Unlock()
}

func TestTrigger_MergesBoundFieldsOverCallTimeFields(t *testing.T) {
	bus := New()

	var got map[string]any
	bus.On("card:select", func(payload any) {
		got = payload.(map[string]any)
	})

	trigger := bus.Trigger("card:select", map[string]any{"source": "catalog", "id": "bound"})
	trigger(map[string]any{"id": "clicked", "x": 1})

	require.NotNil(t, got)
	assert.Equal(t, "bound", got["id"], "предустановленные поля побеждают при конфликте")
	assert.Equal(t, "catalog", got["source"])
	assert.Equal(t, 1, got["x"])
}

func TestTrigger_NilArgumentsAreFine(t *testing.T) {
	bus := New()

	calls := 0
	bus.On("ping", func(payload any) { calls++ })

	bus.Trigger("ping", nil)(nil)
	assert.Equal(t, 1, calls)
}

func TestReset_ClearsAllSubscriptions(t *testing.T) {
	bus := New()

	calls := 0
	bus.On("ping", func(payload any) { calls++ })
	bus.OnAll(func(payload any) { calls++ })
	bus.OnPattern(regexp.MustCompile(`.`), func(payload any) { calls++ })

	bus.Reset()
	bus.Emit("ping", nil)

	assert.Equal(t, 0, calls)
}
