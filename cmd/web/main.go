// @title           Netowork API
// @version         1.0
// @description     Freelance marketplace API: tasks, replies, chats and portfolio.
// @host            localhost:4000
// @BasePath        /
// @securityDefinitions.apikey SessionCookie
// @in              cookie
// @name            session

package main

import "netowork_backend/internal/app"

func main() {
	app.Run()
}
