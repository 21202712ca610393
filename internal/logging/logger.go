// Package logging описывает структурированный логгер, который передается
// сервисам, обработчикам и серверу явно, без глобального состояния.
package logging

import "context"

// Logger принимает сообщение и пары ключ-значение:
//
//	log.Info(ctx, "сервер запущен", "addr", addr)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With возвращает дочерний логгер с фиксированными атрибутами
	With(args ...any) Logger
}
