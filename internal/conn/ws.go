package conn

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/minisql/minisql/pkg"
)

var upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WsRequest struct {
	Query string `json:"query"`
	ReqId int    `json:"__msql_client_req_id__"` // used by clients to pair responses
}

type Response struct {
	Lines   []string `json:"lines"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__msql_client_req_id__"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{Status: status, Message: err}
}

// handleSocket upgrades the connection and answers one statement per
// message until the client goes away.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	if s.user != nil && !s.socketAuthorized(r) {
		http.Error(w, "connection unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}
	pkg.InfoLog("New connection established")
	defer ws.Close()

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("unexpected close", err)
			} else {
				pkg.DebugLog("connection closed", err)
			}
			return
		}

		var req WsRequest
		var res Response
		if err := json.Unmarshal(message, &req); err != nil {
			res = NewErrorResponse(http.StatusBadRequest, err.Error())
		} else {
			res = Response{
				Lines:  s.engine.Execute(req.Query),
				Status: http.StatusOK,
			}
			res.ReqId = req.ReqId
		}

		if err := ws.WriteJSON(res); err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}
	}
}

// socketAuthorized accepts either basic auth or username/password
// query parameters, so browser clients can connect too.
func (s *Server) socketAuthorized(r *http.Request) bool {
	if name, password, ok := r.BasicAuth(); ok {
		return s.user.Validate(name, password)
	}
	query := r.URL.Query()
	return s.user.Validate(query.Get("username"), query.Get("password"))
}
