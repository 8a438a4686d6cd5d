// Package events реализует брокер событий — классическую публикацию/подписку
// с тремя видами ключей: точное имя события, регулярное выражение и '*'
// брокер ничего не знает о предметной области и передаёт полезную нагрузку как есть
package events

import (
	"reflect"
	"regexp"
	"sync"
)

// Handler — обработчик события
// подписчики по точному имени и по шаблону получают полезную нагрузку события,
// подписчики на '*' — EmitterEvent
type Handler func(payload any)

// EmitterEvent — то, что получают подписчики на все события
type EmitterEvent struct {
	Name    string
	Payload any
}

// Wildcard — ключ подписки «на все события»
const Wildcard = "*"

type keyKind int

const (
	kindExact keyKind = iota
	kindPattern
	kindWildcard
)

// subKey — тег-вариант ключа подписки
// для шаблона в name хранится исходник регулярного выражения
type subKey struct {
	kind keyKind
	name string
}

// Bus — брокер событий
// обработчики под одним ключом хранятся множеством: повторная подписка
// того же обработчика на тот же ключ игнорируется
type Bus struct {
	mu       sync.Mutex
	handlers map[subKey]map[uintptr]Handler
	patterns map[string]*regexp.Regexp
}

// New создаёт пустой брокер; брокер передаётся компонентам явно,
// глобального экземпляра нет
func New() *Bus {
	return &Bus{
		handlers: make(map[subKey]map[uintptr]Handler),
		patterns: make(map[string]*regexp.Regexp),
	}
}

// On подписывает обработчик на событие с точным именем
// имя Wildcard подписывает на все события, как OnAll
func (b *Bus) On(name string, handler Handler) {
	key := subKey{kind: kindExact, name: name}
	if name == Wildcard {
		key.kind = kindWildcard
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addLocked(key, handler)
}

// OnPattern подписывает обработчик на все события,
// имена которых соответствуют регулярному выражению
func (b *Bus) OnPattern(re *regexp.Regexp, handler Handler) {
	key := subKey{kind: kindPattern, name: re.String()}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.patterns[key.name] = re
	b.addLocked(key, handler)
}

// OnAll подписывает обработчик на все события
func (b *Bus) OnAll(handler Handler) {
	b.On(Wildcard, handler)
}

// Off снимает обработчик с события; если это был последний обработчик ключа,
// запись ключа удаляется целиком. Снятие незарегистрированного обработчика — no-op
func (b *Bus) Off(name string, handler Handler) {
	key := subKey{kind: kindExact, name: name}
	if name == Wildcard {
		key.kind = kindWildcard
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(key, handler)
}

// OffPattern снимает обработчик с подписки по шаблону
func (b *Bus) OffPattern(re *regexp.Regexp, handler Handler) {
	key := subKey{kind: kindPattern, name: re.String()}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(key, handler)
}

// Emit публикует событие с данными
// обработчики по точному имени и по шаблону получают payload,
// каждый не более одного раза за публикацию, даже если подошёл по нескольким ключам;
// обработчики на '*' получают EmitterEvent — это отдельная доставка
// паники обработчиков брокер не перехватывает
func (b *Bus) Emit(name string, payload any) {
	b.mu.Lock()
	var direct, all []Handler
	seen := make(map[uintptr]struct{})
	for key, set := range b.handlers {
		switch key.kind {
		case kindExact:
			if key.name != name {
				continue
			}
			for ptr, h := range set {
				if _, ok := seen[ptr]; !ok {
					seen[ptr] = struct{}{}
					direct = append(direct, h)
				}
			}
		case kindPattern:
			re := b.patterns[key.name]
			if re == nil || !re.MatchString(name) {
				continue
			}
			for ptr, h := range set {
				if _, ok := seen[ptr]; !ok {
					seen[ptr] = struct{}{}
					direct = append(direct, h)
				}
			}
		case kindWildcard:
			for _, h := range set {
				all = append(all, h)
			}
		}
	}
	b.mu.Unlock()

	// обработчики вызываются вне блокировки,
	// чтобы из них можно было публиковать и подписываться
	for _, h := range direct {
		h(payload)
	}
	if len(all) > 0 {
		event := EmitterEvent{Name: name, Payload: payload}
		for _, h := range all {
			h(event)
		}
	}
}

// Trigger возвращает коллбек, публикующий событие при вызове
// поля момента вызова объединяются с предустановленными, предустановленные побеждают
// удобно отдавать такой коллбек слою отображения вместо замыкания на каждом месте вызова
func (b *Bus) Trigger(name string, partial map[string]any) func(map[string]any) {
	return func(event map[string]any) {
		data := make(map[string]any, len(event)+len(partial))
		for k, v := range event {
			data[k] = v
		}
		for k, v := range partial {
			data[k] = v
		}
		b.Emit(name, data)
	}
}

// Reset снимает все подписки; используется на границах тестов и при завершении
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[subKey]map[uintptr]Handler)
	b.patterns = make(map[string]*regexp.Regexp)
}

// идентичность обработчика — указатель функции,
// он и служит ключом множества подписчиков
func handlerPtr(h Handler) uintptr {
	return reflect.ValueOf(h).Pointer()
}

func (b *Bus) addLocked(key subKey, handler Handler) {
	set, ok := b.handlers[key]
	if !ok {
		set = make(map[uintptr]Handler)
		b.handlers[key] = set
	}
	set[handlerPtr(handler)] = handler
}

func (b *Bus) removeLocked(key subKey, handler Handler) {
	set, ok := b.handlers[key]
	if !ok {
		return
	}
	delete(set, handlerPtr(handler))
	if len(set) == 0 {
		delete(b.handlers, key)
		if key.kind == kindPattern {
			delete(b.patterns, key.name)
		}
	}
}
