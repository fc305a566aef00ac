package handlers

import (
    "log"
    "net/http"

    "github.com/gorilla/mux"

    "github.com/pongarena/pongarena-backend/models"
    "github.com/pongarena/pongarena-backend/responses"
    "github.com/pongarena/pongarena-backend/utils"
)

// FetchMatchHistory lists the persisted matches a player took part in.
func FetchMatchHistory(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    username := vars["username"]

    history, err := matches.MatchesFor(username)
    if err != nil {
        log.Println(err)
        utils.HandleError(w, responses.InternalServerError{Msg: "Failed to fetch match history."})
        return
    }

    utils.HandleSuccess(w, models.SuccessResponse(history))
}
