package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionChanged(t *testing.T) {
	evt := CollectionChanged("apis")

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "apis", evt.Collection)
	assert.Equal(t, EventSuccess, evt.Type)
	assert.False(t, evt.Timestamp.IsZero())
	assert.NotEqual(t, evt.ID, CollectionChanged("apis").ID)
}

func TestRuntimeEmitter_DropsUntilAttached(t *testing.T) {
	e := NewRuntimeEmitter()
	assert.NotPanics(t, func() {
		e.Emit(context.Background(), StoreChanged, CollectionChanged("apis"))
	})
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Emit(context.Background(), StoreChanged, NewEvent(EventInfo, "a"))
	r.Emit(context.Background(), ChatUpdated, NewEvent(EventInfo, "b"))

	assert.Equal(t, []string{StoreChanged, ChatUpdated}, r.Names())
}
