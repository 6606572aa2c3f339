package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"MindPeak/config"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()
		conn, connErr = amqp.Dial(url)
		if connErr != nil {
			return
		}

		// 提前声明拓扑，发布方和消费方都依赖
		var ch *amqp.Channel
		ch, connErr = conn.Channel()
		if connErr != nil {
			return
		}
		defer ch.Close()

		connErr = declareTopology(ch)
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	return conn.Close()
}

// declareTopology 声明进阶事件的 exchange 和队列
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		"progression.events", // name
		"topic",              // kind
		true,                 // durable
		false,                // auto-delete
		false,                // internal
		false,                // no-wait
		nil,
	); err != nil {
		return err
	}

	queues := map[string]string{
		"progression.path.completed":  "path.completed",
		"progression.stage.completed": "stage.completed",
	}

	for queue, routingKey := range queues {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(queue, routingKey, "progression.events", false, nil); err != nil {
			return err
		}
	}

	return nil
}
