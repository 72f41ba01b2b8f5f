package repo

// ORDERS

const createOrderSQL = `INSERT INTO orders (user_id, items, amount)
VALUES ($1, ($2)::jsonb, ($3)::numeric)
RETURNING id, created_at;`

const createOrderStatusSQL = `INSERT INTO order_statuses (order_id, status)
VALUES ($1, $2)
RETURNING created_at;`

const getOrderSQL = `SELECT id, user_id, items, amount::text, created_at
FROM orders
WHERE id = $1;`

const getOrderStatusesSQL = `SELECT status, created_at
FROM order_statuses
WHERE order_id = $1
ORDER BY created_at, id;`

// OUTBOX

const stageOutboxSQL = `
INSERT INTO outbox (
  aggregate_id, aggregate_type, event_type, payload, state, attempts, next_attempt_at, created_at
) VALUES ($1, $2, $3, ($4)::jsonb, $5, 0, now(), now())
RETURNING id, next_attempt_at, created_at;
`

// Захват пачки: берём PENDING с наступившим next_attempt_at и CLAIMED с
// истёкшей арендой (воркер умер, не отметив результат). FOR UPDATE SKIP LOCKED
// гарантирует, что два конкурентных вызова не получат одно и то же сообщение.
const claimBatchSQL = `
WITH picked AS (
	SELECT id
  	FROM outbox
  	WHERE (state = 'PENDING' AND next_attempt_at <= now())
    	OR (state = 'CLAIMED' AND claimed_at <= now() - $1::interval)
  	ORDER BY created_at, id
  	FOR UPDATE SKIP LOCKED
	LIMIT $3
)
UPDATE outbox AS o
SET state = 'CLAIMED', claimed_by = $2, claimed_at = now()
FROM picked
WHERE o.id = picked.id
RETURNING o.id, o.aggregate_id, o.aggregate_type, o.event_type, o.payload, o.state,
	o.attempts, o.claimed_by, o.claimed_at, o.published_at, o.next_attempt_at, o.created_at;
`

// Переход CLAIMED -> PUBLISHED. Условие по state делает операцию идемпотентной:
// на уже опубликованном сообщении апдейт не тронет ни одной строки.
const markPublishedSQL = `
UPDATE outbox
SET state = 'PUBLISHED', published_at = now(), attempts = attempts + 1
WHERE id = $1 AND state = 'CLAIMED';
`

// Переход CLAIMED -> PENDING: аренда снимается, повтор после next_attempt_at.
const markFailedSQL = `
UPDATE outbox
SET state = 'PENDING', claimed_by = NULL, claimed_at = NULL,
	attempts = attempts + 1, next_attempt_at = $2
WHERE id = $1 AND state = 'CLAIMED';
`

// Переход CLAIMED -> FAILED: attempts исчерпаны, сообщение ядовитое.
const markPoisonSQL = `
UPDATE outbox
SET state = 'FAILED', claimed_by = NULL, claimed_at = NULL, attempts = attempts + 1
WHERE id = $1 AND state = 'CLAIMED';
`

const purgePublishedSQL = `DELETE FROM outbox
WHERE state = 'PUBLISHED'
	AND published_at < now() - make_interval(days => $1);`
