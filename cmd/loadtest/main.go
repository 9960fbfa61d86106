package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Result 记录单次请求的 HTTP 结果，便于聚合统计。
type Result struct {
	Status int
	Body   string
	Err    error
}

// orderReq 与 /api/orders 的请求体保持一致。
type orderReq struct {
	StoreID         uint `json:"store_id"`
	AddressID       uint `json:"address_id"`
	DeliveryTypeID  uint `json:"delivery_type_id"`
	PaymentMethodID uint `json:"payment_method_id"`
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	storeID := flag.Uint("store", 1, "store id")
	addressID := flag.Uint("address", 1, "address id")
	deliveryID := flag.Uint("delivery", 1, "delivery type id")
	paymentID := flag.Uint("payment", 1, "payment method id")
	jwtSecret := flag.String("jwt-secret", "dev-jwt-secret", "shared HS256 secret, must match server JWT_SECRET")

	// 并发下单参数：nUsers 个用户各带已勾选购物车并发下单，
	// 用于验证库存扣减不超卖（成功数 <= 初始库存）。
	nUsers := flag.Int("users", 100, "distinct users (ids 1..N, carts must be seeded)")
	concurrency := flag.Int("c", 50, "max concurrency")

	// 单用户重复下单参数：同一用户连发 total 次，验证「一人一单」
	// 约束下最多一单成功，其余 409。
	sameUserID := flag.Uint("same-user", 1, "user id for the single-active-order test")
	sameUserTotal := flag.Int("same-user-total", 30, "requests fired for the single-active-order test")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	req := orderReq{
		StoreID:         *storeID,
		AddressID:       *addressID,
		DeliveryTypeID:  *deliveryID,
		PaymentMethodID: *paymentID,
	}

	// 1) 不超卖测试：不同用户并发下单
	fmt.Printf("start oversell test: store=%d users=%d concurrency=%d\n", *storeID, *nUsers, *concurrency)
	results := runCreate(client, *baseURL, *jwtSecret, req, *nUsers, *concurrency)
	printSummary("oversell", results)

	// 2) 一人一单测试：同一用户并发重复下单，只应有一单成功
	fmt.Printf("\nstart single-active-order test: user=%d total=%d\n", *sameUserID, *sameUserTotal)
	results2 := runCreateSameUser(client, *baseURL, *jwtSecret, req, *sameUserID, *sameUserTotal, *concurrency)
	printSummary("single_active_order", results2)
}

func runCreate(client *http.Client, baseURL, secret string, req orderReq, nUsers, concurrency int) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, nUsers)

	for i := 0; i < nUsers; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = createOnce(client, baseURL, signToken(secret, uint(idx+1)), req)
		}(i)
	}

	wg.Wait()
	return results
}

func runCreateSameUser(client *http.Client, baseURL, secret string, req orderReq, userID uint, total, concurrency int) []Result {
	token := signToken(secret, userID)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, total)

	for i := 0; i < total; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = createOnce(client, baseURL, token, req)
		}(i)
	}

	wg.Wait()
	return results
}

func createOnce(client *http.Client, baseURL, token string, req orderReq) Result {
	b, _ := json.Marshal(req)
	httpReq, _ := http.NewRequest(http.MethodPost, baseURL+"/api/orders", bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(httpReq)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return Result{Status: resp.StatusCode, Body: string(body)}
}

// signToken 本地签发压测用 token，省去走登录流程。
func signToken(secret string, userID uint) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		panic(fmt.Sprintf("sign token: %v", err))
	}
	return signed
}

// printSummary 聚合输出不同状态码分布。
func printSummary(name string, results []Result) {
	count := map[int]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
	}
	fmt.Printf("[%s] http status summary:\n", name)
	for _, code := range []int{200, 400, 401, 404, 409, 429, 500} {
		if count[code] > 0 {
			fmt.Printf("  %d -> %d\n", code, count[code])
		}
	}
	if errCount > 0 {
		fmt.Printf("  errors -> %d\n", errCount)
	}
}
