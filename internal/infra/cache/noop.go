package cache

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Noop кэш, который ничего не хранит (redis выключен)
type Noop struct{}

func (Noop) Get(context.Context, Key) (Entry, bool, error) { return Entry{}, false, nil }

func (Noop) Set(context.Context, Key, int64, []byte) error { return nil }

func (Noop) Invalidate(context.Context, int64, types.Date) error { return nil }
