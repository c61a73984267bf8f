//go:build ignore
// +build ignore

// hash_phone.go — утилита для ручной проверки номера против хеша
// из таблицы verifications (разбор жалоб на двойную регистрацию).
// Запуск:
//
//	go run scripts/hash_phone.go <номер>                — напечатать хеш
//	go run scripts/hash_phone.go <номер> '<хеш>'        — сверить с хешем
package main

import (
	"fmt"
	"os"

	"serotonyl.ru/kamasbot/internal/features/verification"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Использование: go run scripts/hash_phone.go <номер> [хеш]")
		os.Exit(1)
	}

	phone := os.Args[1]

	if len(os.Args) >= 3 {
		ok, err := verification.VerifyPhone(phone, os.Args[2])
		if err != nil {
			fmt.Printf("Ошибка проверки: %v\n", err)
			os.Exit(1)
		}
		if ok {
			fmt.Println("Совпадает")
		} else {
			fmt.Println("Не совпадает")
		}
		return
	}

	hash, err := verification.HashPhone(phone)
	if err != nil {
		fmt.Printf("Ошибка хеширования: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
