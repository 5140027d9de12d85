package logging

import (
	"log/slog"
	"net/http"
	_ "net/http/pprof"
)

const pprofAddr = "localhost:6060"

func startPprof() {
	go func() {
		Logger().Info("pprof_server_start", slog.String("addr", pprofAddr))
		if err := http.ListenAndServe(pprofAddr, nil); err != nil {
			Logger().Error("pprof_server_error", slog.String("error", err.Error()))
		}
	}()
}
