// Пробник: подключается к серверу демо, читает кадры и печатает
// сводку. Удобен для проверки сервера без браузера.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/villuna/tumblin-down/backend/internal/transport/ws"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "адрес сервера")
	frames := flag.Int("frames", 120, "сколько кадров прочитать")
	flag.Parse()

	log.Printf("Подключение к %s", *addr)

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("Ошибка подключения: %v", err)
	}
	defer conn.Close()

	log.Printf("Успешно подключен")

	start := time.Now()
	got := 0
	var lastInstances uint32

	for got < *frames {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Ошибка чтения сообщения: %v", err)
		}

		switch msgType {
		case websocket.TextMessage:
			var msg map[string]interface{}
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("Ошибка разбора сообщения: %v", err)
				continue
			}
			switch msg["type"] {
			case ws.MessageTypeInit:
				log.Printf("INIT: фаза %v, емкость пула %v", msg["state"], msg["pool_capacity"])
			case ws.MessageTypeState:
				log.Printf("STATE: %v", msg["state"])
			default:
				log.Printf("Сообщение типа %v: %v", msg["type"], msg)
			}

		case websocket.BinaryMessage:
			frame, err := ws.DecodeFrame(data)
			if err != nil {
				log.Fatalf("Битый кадр: %v", err)
			}
			got++
			lastInstances = uint32(len(frame.Instances))
			if got%60 == 0 {
				log.Printf("Кадр %d: %d инстансов, камера %v",
					got, len(frame.Instances), frame.Camera.Position)
			}
		}
	}

	elapsed := time.Since(start).Seconds()
	log.Printf("Прочитано %d кадров за %.1f с (~%.1f fps), инстансов в последнем: %d",
		got, elapsed, float64(got)/elapsed, lastInstances)
}
