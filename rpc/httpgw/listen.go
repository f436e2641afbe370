package httpgw

import "net/http"

// Listen starts the debug HTTP gateway in the background. It returns
// immediately; call the returned *http.Server's Shutdown to stop it.
func Listen(addr string, svc *Gateway) *http.Server {
	srv := &http.Server{Addr: addr, Handler: svc.Handler()}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
