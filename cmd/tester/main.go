package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"wa-bridge/sink"

	"github.com/go-resty/resty/v2"
	"github.com/gookit/color"
)

// The tester registers a local receiver on a running bridge and prints
// every payload it gets until interrupted, then unregisters it.
func main() {
	bridge := flag.String("bridge", "http://localhost:3000", "Bridge control surface")
	listen := flag.String("listen", "127.0.0.1:9099", "Address of the local receiver")
	chatID := flag.String("chat", "", "Only receive this chat id")
	groupName := flag.String("group", "", "Only receive this group name")
	flag.Parse()

	callback := fmt.Sprintf("http://%s/hook", *listen)
	client := resty.New().SetBaseURL(*bridge).SetTimeout(10 * time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /hook", func(w http.ResponseWriter, r *http.Request) {
		var p sink.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		printPayload(p)
		w.WriteHeader(http.StatusNoContent)
	})
	server := &http.Server{Addr: *listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Receiver stopped: %v", err)
		}
	}()

	filter := map[string]string{}
	if *chatID != "" {
		filter["chatId"] = *chatID
	}
	if *groupName != "" {
		filter["groupName"] = *groupName
	}
	if err := call(client, "/register", map[string]any{"url": callback, "filter": filter}); err != nil {
		log.Fatalf("Register failed: %v", err)
	}
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(" Listening on " + callback + " "))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	if err := call(client, "/unregister", map[string]any{"url": callback}); err != nil {
		fmt.Println(color.Red.Render("Unregister failed: " + err.Error()))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func call(client *resty.Client, path string, body any) error {
	resp, err := client.R().SetBody(body).Post(path)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%s answered %d: %s", path, resp.StatusCode(), resp.String())
	}
	return nil
}

func printPayload(p sink.Payload) {
	at := time.Unix(p.Timestamp, 0).Format("15:04:05")
	where := p.ChatID
	if p.GroupName != nil {
		where = *p.GroupName + " (" + p.ChatID + ")"
	}
	header := color.New(color.FgCyan).Render(fmt.Sprintf("[%s] %s %s", at, p.Type, where))
	fmt.Println(header, p.Body)
	if p.VoiceFilePath != nil {
		fmt.Println(color.Yellow.Render("  voice: " + *p.VoiceFilePath))
	}
}
