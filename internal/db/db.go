package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/chatforge/chatforge/internal/bot"
	"github.com/chatforge/chatforge/internal/chat"
	"github.com/chatforge/chatforge/internal/webhook"
)

// Connect opens the MySQL database or exits.
func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	return gdb
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&bot.Bot{},
		&bot.APIKey{},
		&chat.Conversation{},
		&chat.Message{},
		&webhook.Webhook{},
	)
}
